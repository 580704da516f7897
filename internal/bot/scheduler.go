package bot

import (
	"time"

	"github.com/google/uuid"
	"github.com/pathakanu/billminder/internal/model"
)

// StartScheduler registers the per-minute due scan and starts the cron loop.
func (b *Bot) StartScheduler() error {
	_, err := b.cron.AddFunc("* * * * *", b.runScan)
	if err != nil {
		return err
	}
	b.cron.Start()
	return nil
}

// StopScheduler stops the cron scheduler gracefully.
func (b *Bot) StopScheduler() {
	ctx := b.cron.Stop()
	<-ctx.Done()
}

// runScan executes one due-reminder pass across all owners. Per-record
// failures are logged and skipped so one bad record never aborts the scan;
// one-time deletions are committed at the end of the pass. A reminder whose
// window passed while the process was down is never delivered and stays
// stored; there is no catch-up.
func (b *Bot) runScan() {
	scanID := uuid.NewString()[:8]
	now := b.now().In(b.cfg.LocalTimezone)

	reminders, err := b.store.ListAll()
	if err != nil {
		b.logger.Printf("scan %s: %v", scanID, err)
		return
	}

	var delivered []uint
	for _, r := range reminders {
		if !dueAt(r, now) {
			continue
		}
		if err := b.sender.SendMessage(r.Owner, FormatReminder(r)); err != nil {
			b.logger.Printf("scan %s: deliver reminder %d to %d: %v", scanID, r.ID, r.Owner, err)
			continue
		}
		if r.Schedule == model.ScheduleOneTime {
			delivered = append(delivered, r.ID)
		}
	}

	for _, id := range delivered {
		if err := b.store.Purge(id); err != nil {
			b.logger.Printf("scan %s: %v", scanID, err)
		}
	}
}

// dueAt reports whether a reminder should fire at now.
//
// One-time reminders are due inside the half-open window
// [occursAt, occursAt+1m), matching the scan cadence so they fire in exactly
// one pass. Monthly reminders match the calendar day and the exact
// hour:minute; a row with no stored time behaves as midnight.
func dueAt(r model.Reminder, now time.Time) bool {
	switch r.Schedule {
	case model.ScheduleOneTime:
		if r.OccursAt == nil {
			return false
		}
		occursAt := *r.OccursAt
		return !now.Before(occursAt) && now.Before(occursAt.Add(time.Minute))
	case model.ScheduleMonthly:
		if r.DayOfMonth == 0 || now.Day() != r.DayOfMonth {
			return false
		}
		hour, minute := 0, 0
		if r.TimeOfDay != "" {
			clock, err := time.Parse(clockLayout, r.TimeOfDay)
			if err != nil {
				return false
			}
			hour, minute = clock.Hour(), clock.Minute()
		}
		return now.Hour() == hour && now.Minute() == minute
	}
	return false
}
