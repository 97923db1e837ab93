package driver

import (
	"encoding/json"
	"fmt"

	"bindsadapter/internal/diag"
	"bindsadapter/internal/observ"
	"bindsadapter/internal/source"
)

type timingPayload struct {
	Kind       string               `json:"kind"`
	Containers int                  `json:"containers"`
	TotalMS    float64              `json:"total_ms"`
	Phases     []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic adds an ObsTimings info entry whose note is the JSON
// payload. It goes in even when the bag is full.
func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "generate"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms over %d containers", payload.Kind, payload.TotalMS, payload.Containers)
	entry := diag.New(diag.SevInfo, diag.ObsTimings, "", source.NoSpan, msg).
		WithNote(source.NoSpan, string(data))

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Merge(bag)
	overflow.Add(entry)
	*bag = *overflow
}
