package bot

import (
	"strconv"
	"strings"
	"time"

	"github.com/pathakanu/billminder/internal/model"
)

// Date/time input formats accepted from users.
const (
	dateTimeLayout = "02.01.2006 15:04"
	clockLayout    = "15:04"
)

// Callback payloads carried by prompt buttons. Users on a plain-text surface
// can type the button label instead; choice steps accept either.
const (
	cbMenuAdd  = "menu_add"
	cbMenuList = "menu_list"
	cbMenuEdit = "menu_edit"
	cbMenuDel  = "menu_del"
	cbNoteYes  = "note_yes"
	cbNoteNo   = "note_no"
	cbLinkYes  = "link_yes"
	cbLinkNo   = "link_no"
	cbOneTime  = "one_time"
	cbMonthly  = "monthly"
	cbDelYes   = "del_yes"
	cbDelNo    = "del_no"
)

// Button is a single tappable option attached to a prompt.
type Button struct {
	Label   string
	Payload string
}

type flowKind int

const (
	flowAdd flowKind = iota
	flowEdit
)

// step names the next input a conversation expects.
type step int

const (
	stepText step = iota
	stepNoteChoice
	stepNoteValue
	stepLinkChoice
	stepLinkValue
	stepScheduleChoice
	stepOneTimeDateTime
	stepMonthlyDay
	stepMonthlyTime
)

// flow is one user's in-progress add or edit conversation. The draft holds
// every field collected so far; for an edit it starts as a copy of the stored
// record so fields the flow never touches (amount) survive the update.
type flow struct {
	kind   flowKind
	target uint // reminder id being edited, flowEdit only
	step   step
	draft  model.Reminder
}

type prompt struct {
	text    string
	buttons []Button
}

// flowResult is what a transition asks the bot to do: send prompts, and on
// done commit the draft and drop the flow.
type flowResult struct {
	prompts []prompt
	done    bool
}

var (
	noteChoicePrompt = prompt{
		text: "Add a personal note (an account reference, for example)?",
		buttons: []Button{
			{Label: "Yes", Payload: cbNoteYes},
			{Label: "No", Payload: cbNoteNo},
		},
	}
	linkChoicePrompt = prompt{
		text: "Attach a payment link?",
		buttons: []Button{
			{Label: "Yes", Payload: cbLinkYes},
			{Label: "No", Payload: cbLinkNo},
		},
	}
	scheduleChoicePrompt = prompt{
		text: "What kind of reminder?",
		buttons: []Button{
			{Label: "One-time", Payload: cbOneTime},
			{Label: "Monthly", Payload: cbMonthly},
		},
	}
	oneTimePrompt     = prompt{text: "When should I remind you? Format: 15.12.2025 18:00"}
	monthlyDayPrompt  = prompt{text: "Which day of the month? (1-28)"}
	monthlyTimePrompt = prompt{text: "What time? Format: HH:MM, e.g. 09:30"}
)

// advance feeds one user input into the flow and returns the next prompts.
// Invalid input re-prompts the same step and leaves the draft untouched.
// It is pure over (flow, input, now); the caller applies store effects.
func (f *flow) advance(input string, now time.Time) flowResult {
	input = strings.TrimSpace(input)

	switch f.step {
	case stepText:
		if input == "" {
			return ask(prompt{text: "What should I remind you about?"})
		}
		f.draft.Text = input
		f.step = stepNoteChoice
		return ask(noteChoicePrompt)

	case stepNoteChoice:
		switch normalizeChoice(input) {
		case cbNoteYes, "yes":
			f.step = stepNoteValue
			return ask(prompt{text: "Send the note text:"})
		case cbNoteNo, "no":
			f.draft.Note = ""
			f.step = stepLinkChoice
			return ask(linkChoicePrompt)
		}
		return ask(noteChoicePrompt)

	case stepNoteValue:
		f.draft.Note = input
		f.step = stepLinkChoice
		return ask(linkChoicePrompt)

	case stepLinkChoice:
		switch normalizeChoice(input) {
		case cbLinkYes, "yes":
			f.step = stepLinkValue
			return ask(prompt{text: "Send the link:"})
		case cbLinkNo, "no":
			f.draft.Link = ""
			f.step = stepScheduleChoice
			return ask(scheduleChoicePrompt)
		}
		return ask(linkChoicePrompt)

	case stepLinkValue:
		// An empty reply is allowed and clears the link.
		f.draft.Link = input
		f.step = stepScheduleChoice
		return ask(scheduleChoicePrompt)

	case stepScheduleChoice:
		switch normalizeChoice(input) {
		case cbOneTime, "one-time":
			f.draft.Schedule = model.ScheduleOneTime
			f.draft.DayOfMonth = 0
			f.draft.TimeOfDay = ""
			f.step = stepOneTimeDateTime
			return ask(oneTimePrompt)
		case cbMonthly:
			f.draft.Schedule = model.ScheduleMonthly
			f.draft.OccursAt = nil
			f.step = stepMonthlyDay
			return ask(monthlyDayPrompt)
		}
		return ask(scheduleChoicePrompt)

	case stepOneTimeDateTime:
		occursAt, err := time.ParseInLocation(dateTimeLayout, input, now.Location())
		if err != nil || !occursAt.After(now) {
			return ask(prompt{text: "That date doesn't work. Use DD.MM.YYYY HH:MM (e.g. 15.12.2025 18:00) and pick a future moment."})
		}
		f.draft.OccursAt = &occursAt
		f.draft.DayOfMonth = 0
		f.draft.TimeOfDay = ""
		return flowResult{done: true}

	case stepMonthlyDay:
		day, err := strconv.Atoi(input)
		if err != nil || day < 1 || day > 28 {
			return ask(prompt{text: "The day must be a number between 1 and 28. Try again:"})
		}
		f.draft.DayOfMonth = day
		f.step = stepMonthlyTime
		return ask(monthlyTimePrompt)

	case stepMonthlyTime:
		clock, err := time.Parse(clockLayout, input)
		if err != nil {
			return ask(prompt{text: "That time doesn't work. Use HH:MM, e.g. 09:30."})
		}
		f.draft.TimeOfDay = clock.Format(clockLayout)
		f.draft.OccursAt = nil
		return flowResult{done: true}
	}

	return ask(prompt{text: "What should I remind you about?"})
}

func ask(p prompt) flowResult {
	return flowResult{prompts: []prompt{p}}
}

func normalizeChoice(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
