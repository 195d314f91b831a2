package model

import "github.com/aarondl/opt/null"

type Incident string

// IncidentDNF is the only incident the scorer can decide.
const IncidentDNF Incident = "dnf"

//nolint:tagliatelle // wire format
type CarTick struct {
	CarID    string             `json:"car_id"`
	Progress float64            `json:"progress"`
	Speed    float64            `json:"speed"` // mph
	Incident null.Val[Incident] `json:"incident"`
}

// TickBatch is one broadcast frame of a race.
//
//nolint:tagliatelle // wire format
type TickBatch struct {
	Tick     int       `json:"tick_index"`
	LapCount int       `json:"lap_count"`
	Cars     []CarTick `json:"cars"`
}
