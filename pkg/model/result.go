package model

import "github.com/aarondl/opt/null"

//nolint:tagliatelle // wire format
type SlotResult struct {
	Tier             Tier    `json:"tier"`
	BaseScore        float64 `json:"base_score"`
	EventWeight      float64 `json:"event_weight"`
	WeightedScore    float64 `json:"weighted_score"`
	Readiness        float64 `json:"readiness"`
	ReadinessPenalty float64 `json:"readiness_penalty"`
}

// EntryResult is the scored outcome of one entrant.
// All values are reproducible from PerSlot and the event rules.
//
//nolint:tagliatelle // wire format
type EntryResult struct {
	CarID                  string              `json:"car_id"`
	Username               string              `json:"username"`
	Position               int                 `json:"position"`
	ResultScore            float64             `json:"result_score"`
	BuildQuality           float64             `json:"build_quality"`
	EventFit               float64             `json:"event_fit"`
	EventPenalty           float64             `json:"event_penalty"`
	ReadinessScore         float64             `json:"readiness_score"`
	LuckDelta              float64             `json:"luck_delta"`
	LuckTag                string              `json:"luck_tag"`
	PreLuckScore           float64             `json:"pre_luck_score"`
	CounterfactualPosition int                 `json:"counterfactual_position"`
	PerSlot                map[Slot]SlotResult `json:"per_slot"`
	DNF                    bool                `json:"dnf"`
	DNFSlot                null.Val[Slot]      `json:"dnf_slot"`
	// DNFScore is the clamped score the entrant would have had without the DNF.
	DNFScore float64 `json:"dnf_score"`
}
