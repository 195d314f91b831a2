package model

import "time"

type RaceStatus string

const (
	RaceOpen     RaceStatus = "open"
	RaceLocked   RaceStatus = "locked"
	RaceRunning  RaceStatus = "running"
	RaceFinished RaceStatus = "finished"
)

// Race is the serializable view of a race handled by the lifecycle.
//
//nolint:tagliatelle // wire format
type Race struct {
	ID          string        `json:"id"`
	ScheduledAt time.Time     `json:"scheduled_at"`
	EventType   string        `json:"event_type"`
	Status      RaceStatus    `json:"status"`
	LapCount    int           `json:"lap_count"`
	GridSize    int           `json:"grid_size"`
	Track       *Track        `json:"track"`
	Entries     []Entry       `json:"entries"`
	Results     []EntryResult `json:"results"`
}
