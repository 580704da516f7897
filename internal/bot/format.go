package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pathakanu/billminder/internal/model"
)

// FormatReminder renders a reminder for listing and delivery. Always the id
// and text, then note, amount and link when present, then the schedule line.
// Rows carried over from the earlier schema may miss the day or time; those
// render a placeholder instead of failing.
func FormatReminder(r model.Reminder) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ID %d\n%s\n", r.ID, r.Text)
	if r.Note != "" {
		fmt.Fprintf(&sb, "Note: %s\n", r.Note)
	}
	if r.Amount != "" {
		fmt.Fprintf(&sb, "Amount: %s\n", r.Amount)
	}
	if r.Link != "" {
		fmt.Fprintf(&sb, "Link: %s\n", r.Link)
	}
	sb.WriteString(scheduleLine(r))
	return sb.String()
}

func scheduleLine(r model.Reminder) string {
	if r.Schedule == model.ScheduleMonthly {
		day := "--"
		if r.DayOfMonth != 0 {
			day = strconv.Itoa(r.DayOfMonth)
		}
		timeOfDay := r.TimeOfDay
		if timeOfDay == "" {
			timeOfDay = "--:--"
		}
		return fmt.Sprintf("⏰ every month, day %s at %s", day, timeOfDay)
	}
	if r.OccursAt == nil {
		return "⏰ --.--.---- --:--"
	}
	return "⏰ " + r.OccursAt.Format(dateTimeLayout)
}
