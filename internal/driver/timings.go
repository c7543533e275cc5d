package driver

import (
	"encoding/json"
	"fmt"

	"phpsniff/internal/diag"
	"phpsniff/internal/observ"
	"phpsniff/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	Files   int                  `json:"files"`
	Cached  int                  `json:"cached,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// timingDiagnostic renders a timer report as an informational diagnostic
// whose single note carries the JSON payload.
func timingDiagnostic(payload timingPayload) *diag.Diagnostic {
	if payload.Kind == "" {
		payload.Kind = "check"
	}
	msg := fmt.Sprintf("timings (%s): %d files, total %.2f ms", payload.Kind, payload.Files, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, payload.Path)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}

	return &diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  msg,
		Primary:  source.Span{},
		Notes: []diag.Note{
			{Span: source.Span{}, Msg: string(data)},
		},
	}
}
