package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		start  RunState
		update StageUpdate
		want   RunState
	}{
		{
			name:   "empty update changes nothing",
			start:  RunState{Topic: "t", Logs: []string{"a"}, SearchData: "s"},
			update: StageUpdate{},
			want:   RunState{Topic: "t", Logs: []string{"a"}, SearchData: "s"},
		},
		{
			name:   "empty logs keep length",
			start:  RunState{Topic: "t", Logs: []string{"a", "b"}},
			update: StageUpdate{Logs: []string{}},
			want:   RunState{Topic: "t", Logs: []string{"a", "b"}},
		},
		{
			name:   "logs append in order",
			start:  RunState{Topic: "t", Logs: []string{"a"}},
			update: StageUpdate{Logs: []string{"b", "c"}},
			want:   RunState{Topic: "t", Logs: []string{"a", "b", "c"}},
		},
		{
			name:   "present search data overwrites",
			start:  RunState{Topic: "t", Logs: []string{}, SearchData: "old"},
			update: StageUpdate{SearchData: ptr("new")},
			want:   RunState{Topic: "t", Logs: []string{}, SearchData: "new"},
		},
		{
			name:   "absent fields are preserved",
			start:  RunState{Topic: "t", Logs: []string{}, SearchData: "data", FinalReport: "report"},
			update: StageUpdate{Logs: []string{"x"}},
			want:   RunState{Topic: "t", Logs: []string{"x"}, SearchData: "data", FinalReport: "report"},
		},
		{
			name:   "present empty report overwrites",
			start:  RunState{Topic: "t", Logs: []string{}, FinalReport: "report"},
			update: StageUpdate{FinalReport: ptr("")},
			want:   RunState{Topic: "t", Logs: []string{}, FinalReport: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := tt.start
			Merge(&state, tt.update)
			assert.Equal(t, tt.want, state)
		})
	}
}

func TestMerge_SplitUpdatesMatchSingleUpdate(t *testing.T) {
	split := NewRunState("t")
	Merge(&split, StageUpdate{Logs: []string{"a"}})
	Merge(&split, StageUpdate{Logs: []string{"b", "c"}})

	single := NewRunState("t")
	Merge(&single, StageUpdate{Logs: []string{"a", "b", "c"}})

	assert.Equal(t, single.Logs, split.Logs)
}

func TestRunState_Clone(t *testing.T) {
	orig := RunState{Topic: "t", Logs: []string{"a"}}
	clone := orig.Clone()
	clone.Logs[0] = "changed"
	clone.Logs = append(clone.Logs, "b")

	assert.Equal(t, []string{"a"}, orig.Logs)
	assert.NotNil(t, RunState{}.Clone().Logs)
}

func TestStageUpdate_HasReport(t *testing.T) {
	assert.False(t, StageUpdate{}.HasReport())
	assert.False(t, StageUpdate{FinalReport: ptr("")}.HasReport())
	assert.True(t, StageUpdate{FinalReport: ptr("## Report")}.HasReport())
}
