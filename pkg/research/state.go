package research

import "slices"

// RunState is the cumulative state of one pipeline run. It is owned by a
// single run and never shared across requests.
type RunState struct {
	Topic       string   `json:"topic"`
	Logs        []string `json:"logs"`
	SearchData  string   `json:"search_data"`
	FinalReport string   `json:"final_report"`
}

// NewRunState returns the initial state for a run on topic.
func NewRunState(topic string) RunState {
	return RunState{
		Topic: topic,
		Logs:  []string{},
	}
}

// StageUpdate is the partial state written by one stage invocation.
// A nil field is absent and leaves the current value untouched.
type StageUpdate struct {
	Logs        []string `json:"logs,omitempty"`
	SearchData  *string  `json:"search_data,omitempty"`
	FinalReport *string  `json:"final_report,omitempty"`
}

// HasReport reports whether the update carries a non-empty final report.
func (u StageUpdate) HasReport() bool {
	return u.FinalReport != nil && *u.FinalReport != ""
}

// Merge folds update into state: logs are appended in order, scalar fields
// are replaced only when present in the update.
func Merge(state *RunState, update StageUpdate) {
	if len(update.Logs) > 0 {
		state.Logs = append(state.Logs, update.Logs...)
	}
	if update.SearchData != nil {
		state.SearchData = *update.SearchData
	}
	if update.FinalReport != nil {
		state.FinalReport = *update.FinalReport
	}
}

// Clone returns a copy of the state that shares no memory with s.
func (s RunState) Clone() RunState {
	s.Logs = slices.Clone(s.Logs)
	if s.Logs == nil {
		s.Logs = []string{}
	}
	return s
}

func ptr(s string) *string { return &s }
