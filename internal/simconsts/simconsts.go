package simconsts

type Direction int

const (
	Down Direction = -1
	None Direction = 0
	Up   Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case None:
		return "None"
	default:
		return "Undefined"
	}
}

type Behaviour int

const (
	Idle Behaviour = iota // 0
	Moving
	Maintenance
)

func (b Behaviour) String() string {
	switch b {
	case Idle:
		return "B_Idle"
	case Moving:
		return "B_Moving"
	case Maintenance:
		return "B_Maintenance"
	default:
		return "B_UNDEFINED"
	}
}

// EventType names match the elevator_events.event_type column values,
// which downstream feature extraction depends on.
type EventType int

const (
	EventMoving EventType = iota
	EventArrived
	EventBecameIdle
	EventRequestAccepted
	EventRequestRejected
	EventMaintenanceStart
	EventMaintenanceEnd
)

func (et EventType) String() string {
	switch et {
	case EventMoving:
		return "moving"
	case EventArrived:
		return "arrived"
	case EventBecameIdle:
		return "became_idle"
	case EventRequestAccepted:
		return "request_accepted"
	case EventRequestRejected:
		return "request_rejected"
	case EventMaintenanceStart:
		return "maintenance_start"
	case EventMaintenanceEnd:
		return "maintenance_end"
	default:
		return "unknown"
	}
}

func (et EventType) MarshalJSON() ([]byte, error) {
	return []byte("\"" + et.String() + "\""), nil
}

type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectAtCapacity
	RejectInMaintenance
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectAtCapacity:
		return "at_capacity"
	case RejectInMaintenance:
		return "in_maintenance"
	default:
		return "unknown"
	}
}
