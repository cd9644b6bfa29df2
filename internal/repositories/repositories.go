package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/peoplehub/services/automation/internal/models"
)

// EmployeeRepository provides read access to employee data
type EmployeeRepository struct {
	db         *gorm.DB // Write database
	readOnlyDB *gorm.DB // Read-only database
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *gorm.DB, readOnlyDB *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// GetByID gets an employee by ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	// Use read-only DB for reads
	err := r.readOnlyDB.WithContext(ctx).First(&employee, "id = ?", id).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get employee by ID")
	}
	return &employee, nil
}

// TimeEntryRepository provides read access to time entries
type TimeEntryRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewTimeEntryRepository creates a new time entry repository
func NewTimeEntryRepository(db *gorm.DB, readOnlyDB *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// HoursForDay sums the recorded hours for a user on a calendar day
func (r *TimeEntryRepository) HoursForDay(ctx context.Context, userID uuid.UUID, day time.Time) (float64, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var total float64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Select("COALESCE(SUM(hours), 0)").
		Where("user_id = ? AND date >= ? AND date < ?", userID, dayStart, dayEnd).
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to sum daily hours")
	}
	return total, nil
}

// HoursForWeek sums the recorded hours for a user in the ISO week
// containing the given day
func (r *TimeEntryRepository) HoursForWeek(ctx context.Context, userID uuid.UUID, day time.Time) (float64, error) {
	weekStart := StartOfWeek(day)
	weekEnd := weekStart.Add(7 * 24 * time.Hour)

	var total float64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Select("COALESCE(SUM(hours), 0)").
		Where("user_id = ? AND date >= ? AND date < ?", userID, weekStart, weekEnd).
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to sum weekly hours")
	}
	return total, nil
}

// StartOfWeek returns midnight on the Monday of the week containing t
func StartOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the preceding Monday
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(weekday - 1))
}

// ShiftRepository provides access to shift assignments
type ShiftRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewShiftRepository creates a new shift repository
func NewShiftRepository(db *gorm.DB, readOnlyDB *gorm.DB) *ShiftRepository {
	return &ShiftRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// FindOverlapping returns shifts for a user that overlap the interval
func (r *ShiftRepository) FindOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.ShiftAssignment, error) {
	var shifts []models.ShiftAssignment
	err := r.readOnlyDB.WithContext(ctx).
		Where("user_id = ? AND start < ? AND \"end\" > ?", userID, end, start).
		Find(&shifts).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find overlapping shifts")
	}
	return shifts, nil
}

// FlagCoverage marks a shift as needing coverage
func (r *ShiftRepository) FlagCoverage(ctx context.Context, shiftID uuid.UUID, reason string) error {
	err := r.db.WithContext(ctx).
		Model(&models.ShiftAssignment{}).
		Where("id = ?", shiftID).
		Updates(map[string]interface{}{
			"needs_coverage":  true,
			"coverage_reason": reason,
		}).Error
	if err != nil {
		return errors.Wrap(err, "failed to flag shift coverage")
	}
	return nil
}

// IntegrationEventRepository stores the engine's audit log
type IntegrationEventRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewIntegrationEventRepository creates a new integration event repository
func NewIntegrationEventRepository(db *gorm.DB, readOnlyDB *gorm.DB) *IntegrationEventRepository {
	return &IntegrationEventRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// Create appends one integration event
func (r *IntegrationEventRepository) Create(ctx context.Context, event *models.IntegrationEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return errors.Wrap(err, "failed to create integration event")
	}
	return nil
}

// Recent returns the most recent events, newest first
func (r *IntegrationEventRepository) Recent(ctx context.Context, limit int) ([]models.IntegrationEvent, error) {
	var events []models.IntegrationEvent
	err := r.readOnlyDB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load recent integration events")
	}
	return events, nil
}
