package entities

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_NilSlicesBecomeEmpty(t *testing.T) {
	var r MeetingMinutesResult
	r.Normalize()

	b, err := json.Marshal(&r)
	require.NoError(t, err)

	// Serialized form must never contain null lists
	assert.NotContains(t, string(b), "null")
	assert.Contains(t, string(b), `"action_items":[]`)
	assert.Contains(t, string(b), `"decisions":[]`)
	assert.Contains(t, string(b), `"diarization":[]`)
	assert.Contains(t, string(b), `"attendants":[]`)
}

func TestNormalize_DropsEmptyEntries(t *testing.T) {
	r := MeetingMinutesResult{
		ActionItems: []ActionItem{{Description: "keep"}, {Description: ""}},
		Decisions:   []Decision{{Text: ""}, {Text: "keep"}},
	}
	r.Normalize()

	require.Len(t, r.ActionItems, 1)
	assert.Equal(t, "keep", r.ActionItems[0].Description)
	require.Len(t, r.Decisions, 1)
	assert.Equal(t, "keep", r.Decisions[0].Text)
}

func TestNormalize_CapsLists(t *testing.T) {
	var r MeetingMinutesResult
	for i := 0; i < MaxListEntries+10; i++ {
		r.ActionItems = append(r.ActionItems, ActionItem{Description: fmt.Sprintf("task %d", i)})
		r.Decisions = append(r.Decisions, Decision{Text: fmt.Sprintf("decision %d", i)})
	}
	r.Normalize()

	assert.Len(t, r.ActionItems, MaxListEntries)
	assert.Len(t, r.Decisions, MaxListEntries)
	// Earliest entries win
	assert.Equal(t, "task 0", r.ActionItems[0].Description)
}

func TestStructuredSummary_IsZero(t *testing.T) {
	assert.True(t, StructuredSummary{}.IsZero())
	assert.False(t, StructuredSummary{Title: "x"}.IsZero())
	assert.True(t, StructuredSummary{Attendants: []string{}, TableOfContent: []string{}}.IsZero())
}
