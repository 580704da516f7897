package bot

import (
	"testing"
	"time"

	"github.com/pathakanu/billminder/internal/model"
	"github.com/stretchr/testify/require"
)

var flowNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// drive feeds inputs in order and returns the result of the last one.
func drive(t *testing.T, f *flow, inputs ...string) flowResult {
	t.Helper()
	var result flowResult
	for _, input := range inputs {
		result = f.advance(input, flowNow)
	}
	return result
}

func TestFlowOneTimePath(t *testing.T) {
	t.Parallel()
	f := &flow{kind: flowAdd, step: stepText}

	result := drive(t, f, "Pay rent", cbNoteNo, cbLinkNo, cbOneTime, "15.12.2030 18:00")
	require.True(t, result.done)
	require.Empty(t, result.prompts)

	require.Equal(t, "Pay rent", f.draft.Text)
	require.Empty(t, f.draft.Note)
	require.Empty(t, f.draft.Link)
	require.Equal(t, model.ScheduleOneTime, f.draft.Schedule)
	require.NotNil(t, f.draft.OccursAt)
	require.True(t, f.draft.OccursAt.Equal(time.Date(2030, 12, 15, 18, 0, 0, 0, time.UTC)))
	require.Zero(t, f.draft.DayOfMonth)
	require.Empty(t, f.draft.TimeOfDay)
}

func TestFlowMonthlyPathWithNoteAndLink(t *testing.T) {
	t.Parallel()
	f := &flow{kind: flowAdd, step: stepText}

	result := drive(t, f,
		"Pay electricity",
		cbNoteYes, "account 42",
		cbLinkYes, "https://pay.example.com",
		cbMonthly, "15", "09:30",
	)
	require.True(t, result.done)

	require.Equal(t, "account 42", f.draft.Note)
	require.Equal(t, "https://pay.example.com", f.draft.Link)
	require.Equal(t, model.ScheduleMonthly, f.draft.Schedule)
	require.Equal(t, 15, f.draft.DayOfMonth)
	require.Equal(t, "09:30", f.draft.TimeOfDay)
	require.Nil(t, f.draft.OccursAt)
}

func TestFlowAcceptsTypedChoiceLabels(t *testing.T) {
	t.Parallel()
	f := &flow{kind: flowAdd, step: stepText}

	result := drive(t, f, "Water bill", "No", "no", "One-time", "01.01.2031 08:00")
	require.True(t, result.done)
	require.Equal(t, model.ScheduleOneTime, f.draft.Schedule)
}

func TestFlowEmptyTextReprompts(t *testing.T) {
	t.Parallel()
	f := &flow{kind: flowAdd, step: stepText}

	result := f.advance("   ", flowNow)
	require.False(t, result.done)
	require.Len(t, result.prompts, 1)
	require.Equal(t, stepText, f.step)
	require.Empty(t, f.draft.Text)
}

func TestFlowUnrecognizedChoiceReprompts(t *testing.T) {
	t.Parallel()
	f := &flow{kind: flowAdd, step: stepText}
	drive(t, f, "Rent")

	result := f.advance("maybe", flowNow)
	require.False(t, result.done)
	require.Equal(t, stepNoteChoice, f.step)
	require.Len(t, result.prompts, 1)
	require.Equal(t, noteChoicePrompt.text, result.prompts[0].text)
}

func TestFlowEmptyLinkValueClearsLink(t *testing.T) {
	t.Parallel()
	f := &flow{kind: flowEdit, target: 7, step: stepText, draft: model.Reminder{Link: "https://old.example.com"}}

	drive(t, f, "Rent", cbNoteNo, cbLinkYes, "")
	require.Equal(t, stepScheduleChoice, f.step)
	require.Empty(t, f.draft.Link)
}

func TestFlowRejectsPastDateTime(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"01.06.2025 11:59": false, // past
		"01.06.2025 12:00": false, // not strictly after now
		"01.06.2025 12:01": true,  // one minute ahead
		"31.02.2030 10:00": false, // not a real date
		"2030-12-15 18:00": false, // wrong format
	}

	for input, accepted := range cases {
		f := &flow{kind: flowAdd, step: stepText}
		drive(t, f, "Rent", cbNoteNo, cbLinkNo, cbOneTime)

		result := f.advance(input, flowNow)
		require.Equal(t, accepted, result.done, "input %q", input)
		if !accepted {
			require.Equal(t, stepOneTimeDateTime, f.step, "input %q should re-prompt", input)
			require.Len(t, result.prompts, 1)
		}
	}
}

func TestFlowDayOfMonthBounds(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"1":   true,
		"28":  true,
		"0":   false,
		"29":  false,
		"-3":  false,
		"abc": false,
	}

	for input, accepted := range cases {
		f := &flow{kind: flowAdd, step: stepText}
		drive(t, f, "Rent", cbNoteNo, cbLinkNo, cbMonthly)

		result := f.advance(input, flowNow)
		require.False(t, result.done)
		if accepted {
			require.Equal(t, stepMonthlyTime, f.step, "input %q should advance", input)
		} else {
			require.Equal(t, stepMonthlyDay, f.step, "input %q should re-prompt", input)
		}
	}
}

func TestFlowMonthlyTimeValidation(t *testing.T) {
	t.Parallel()

	f := &flow{kind: flowAdd, step: stepText}
	drive(t, f, "Rent", cbNoteNo, cbLinkNo, cbMonthly, "15")

	result := f.advance("half past nine", flowNow)
	require.False(t, result.done)
	require.Equal(t, stepMonthlyTime, f.step)

	result = f.advance("9:30", flowNow)
	require.True(t, result.done)
	require.Equal(t, "09:30", f.draft.TimeOfDay, "time should be normalized to HH:MM")
}
