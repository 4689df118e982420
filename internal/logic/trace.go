package logic

import "github.com/patrickwarner/adslots/internal/models"

// TraceStep records the ads that survived a resolution stage.
type TraceStep struct {
	Stage   string            `json:"stage"`
	AdIDs   []string          `json:"ad_ids"`
	Details map[string]string `json:"details,omitempty"`
}

// SelectionTrace captures the ordered list of steps performed by the resolver.
type SelectionTrace struct {
	Steps []TraceStep `json:"steps"`
}

// AddStep appends a trace entry for the given stage using the supplied ads.
func (t *SelectionTrace) AddStep(stage string, ads []models.AdRecord) {
	t.AddStepWithDetails(stage, ads, nil)
}

// AddStepWithDetails appends a trace entry with additional details about filtering.
func (t *SelectionTrace) AddStepWithDetails(stage string, ads []models.AdRecord, details map[string]string) {
	if t == nil {
		return
	}
	step := TraceStep{Stage: stage, AdIDs: make([]string, 0, len(ads)), Details: details}
	for _, ad := range ads {
		step.AdIDs = append(step.AdIDs, ad.ID)
	}
	t.Steps = append(t.Steps, step)
}

// Step returns the named step, if recorded.
func (t *SelectionTrace) Step(stage string) (TraceStep, bool) {
	if t == nil {
		return TraceStep{}, false
	}
	for _, s := range t.Steps {
		if s.Stage == stage {
			return s, true
		}
	}
	return TraceStep{}, false
}
