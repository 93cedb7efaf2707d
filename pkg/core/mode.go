package core

// RenderMode selects the pipeline's global behavior for one render call.
// Training uses stochastic sample jitter and keeps every sample's
// contribution; inference is deterministic and may terminate rays early.
// The mode is fixed for the duration of a call, never mutated mid-call.
type RenderMode int

const (
	ModeInference RenderMode = iota
	ModeTraining
)

// String returns the mode name
func (m RenderMode) String() string {
	if m == ModeTraining {
		return "training"
	}
	return "inference"
}
