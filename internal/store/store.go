package store

import (
	"errors"
	"fmt"

	"github.com/pathakanu/billminder/internal/model"
	"gorm.io/gorm"
)

// Store provides owner-scoped access to persisted reminders.
//
// Every lookup or mutation on behalf of a user filters by (id, owner)
// together, so a valid id presented by a non-owner behaves exactly like an
// unknown id. The scanner is the only caller allowed to read across owners.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Insert persists a new reminder and assigns its id.
func (s *Store) Insert(r *model.Reminder) error {
	if err := s.db.Create(r).Error; err != nil {
		return fmt.Errorf("store: insert reminder: %w", err)
	}
	return nil
}

// updateColumns are the fields an edit flow may overwrite. Owner and
// CreatedAt are immutable after insert.
var updateColumns = []string{
	"text", "note", "amount", "link",
	"schedule", "occurs_at", "day_of_month", "time_of_day",
}

// Update overwrites an existing reminder owned by owner. It reports false
// when no (id, owner) row matched, without distinguishing why.
func (s *Store) Update(id uint, owner int64, r *model.Reminder) (bool, error) {
	result := s.db.Model(&model.Reminder{}).
		Where("id = ? AND owner = ?", id, owner).
		Select(updateColumns).
		Updates(model.Reminder{
			Text:       r.Text,
			Note:       r.Note,
			Amount:     r.Amount,
			Link:       r.Link,
			Schedule:   r.Schedule,
			OccursAt:   r.OccursAt,
			DayOfMonth: r.DayOfMonth,
			TimeOfDay:  r.TimeOfDay,
		})
	if result.Error != nil {
		return false, fmt.Errorf("store: update reminder %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Delete removes a reminder owned by owner, reporting whether a row matched.
func (s *Store) Delete(id uint, owner int64) (bool, error) {
	result := s.db.Where("id = ? AND owner = ?", id, owner).Delete(&model.Reminder{})
	if result.Error != nil {
		return false, fmt.Errorf("store: delete reminder %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetByID fetches a single reminder owned by owner, or nil when the
// (id, owner) pair matches nothing.
func (s *Store) GetByID(id uint, owner int64) (*model.Reminder, error) {
	var r model.Reminder
	err := s.db.Where("id = ? AND owner = ?", id, owner).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get reminder %d: %w", id, err)
	}
	return &r, nil
}

// ListByOwner returns all reminders belonging to owner, oldest first.
func (s *Store) ListByOwner(owner int64) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := s.db.Where("owner = ?", owner).Order("id ASC").Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("store: list reminders for %d: %w", owner, err)
	}
	return reminders, nil
}

// ListAll returns every stored reminder across all owners. Scanner use only.
func (s *Store) ListAll() ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := s.db.Order("id ASC").Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("store: list all reminders: %w", err)
	}
	return reminders, nil
}

// Purge removes a reminder by id alone, regardless of owner. Used by the
// scanner to drop a one-time reminder after delivery.
func (s *Store) Purge(id uint) error {
	if err := s.db.Delete(&model.Reminder{}, id).Error; err != nil {
		return fmt.Errorf("store: purge reminder %d: %w", id, err)
	}
	return nil
}
