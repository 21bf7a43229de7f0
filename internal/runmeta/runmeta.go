package runmeta

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/xyproto/randomstring"

	"elevsim/internal/logger"
)

var Log = logger.GetLogger()

const NAME_DEFAULT_LEN = 10

// RunMetaData identifies one simulation run in the event store.
type RunMetaData struct {
	RunID           string    `json:"run_id"`
	Name            string    `json:"name"`
	SoftwareVersion string    `json:"software_version"`
	StartedAt       time.Time `json:"started_at"`
}

// New builds the metadata for a fresh run. An empty name gets a random one,
// the way anonymous runs are labelled in the dataset.
func New(name, softwareVersion string, startedAt time.Time) RunMetaData {
	if name == "" {
		name = randomstring.EnglishFrequencyString(NAME_DEFAULT_LEN)
		Log.Warn().Msgf("No run name provided, generated random name %q", name)
	}
	return RunMetaData{
		RunID:           uuid.NewString(),
		Name:            name,
		SoftwareVersion: softwareVersion,
		StartedAt:       startedAt,
	}
}

func (meta *RunMetaData) String() string {
	jsonData, err := json.Marshal(meta)
	if err != nil {
		Log.Error().Msg("Error serialising RunMetaData to JSON")
		return ""
	}
	return string(jsonData)
}
