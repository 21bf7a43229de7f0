package elevator

import "sort"

func minFloor(floors map[int]bool) (int, bool) {
	found := false
	lowest := 0
	for floor := range floors {
		if !found || floor < lowest {
			lowest = floor
			found = true
		}
	}
	return lowest, found
}

func maxFloor(floors map[int]bool) (int, bool) {
	found := false
	highest := 0
	for floor := range floors {
		if !found || floor > highest {
			highest = floor
			found = true
		}
	}
	return highest, found
}

func sortedFloors(floors map[int]bool) []int {
	result := make([]int, 0, len(floors))
	for floor := range floors {
		result = append(result, floor)
	}
	sort.Ints(result)
	return result
}
