package appointment

import "time"

type AvailabilityInput struct {
	Date        time.Time
	DurationMin int
}

type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
