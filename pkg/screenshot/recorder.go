// Package screenshot records step-by-step execution evidence. Capture
// is unconditional and complete; retention is a pure function applied
// only when the response is assembled, so the full trail exists for
// whichever policy the mode calls for.
package screenshot

import (
	"encoding/base64"
	"time"

	"github.com/entrhq/wizardrunner/pkg/config"
)

// ProductionRetainCount is how many of the final screenshots a
// production response keeps. Unfiltered trails can exceed downstream
// transport limits; the last images carry the terminal state (or the
// failure point plus its immediate context), which is where the
// diagnostic value sits.
const ProductionRetainCount = 2

// Shot is one captured viewport image.
type Shot struct {
	Label   string    `json:"label"`
	Data    string    `json:"data"`
	TakenAt time.Time `json:"taken_at"`
}

// Recorder accumulates shots for one execution, in capture order.
type Recorder struct {
	shots []Shot
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Capture appends one image to the trail. Empty data (a failed
// capture) is dropped silently: a missing screenshot must never fail
// the execution it documents.
func (r *Recorder) Capture(label string, data []byte) {
	if len(data) == 0 {
		return
	}
	r.shots = append(r.shots, Shot{
		Label:   label,
		Data:    base64.StdEncoding.EncodeToString(data),
		TakenAt: time.Now().UTC(),
	})
}

// Count returns the total number of shots captured.
func (r *Recorder) Count() int {
	return len(r.shots)
}

// Shots returns the full ordered trail.
func (r *Recorder) Shots() []Shot {
	return r.shots
}

// Retain applies the retention policy: debug mode returns the complete
// trail for maximal diagnosability; production returns at most the
// final ProductionRetainCount shots regardless of outcome - on failure
// the tail is the failure-point capture plus its immediate context,
// because capture is unconditional and ordered. Pure function of its
// inputs; the recorder is not modified.
func Retain(mode config.Mode, success bool, shots []Shot) []Shot {
	if mode == config.ModeDebug {
		return shots
	}
	if len(shots) <= ProductionRetainCount {
		return shots
	}
	return shots[len(shots)-ProductionRetainCount:]
}
