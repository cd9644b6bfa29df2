package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/peoplehub/services/automation/internal/engine"
	"example.com/peoplehub/services/automation/internal/models"
)

func sickLeaveEvent(requestID string, userID uuid.UUID) engine.ChangeEvent {
	return engine.ChangeEvent{
		Entity:    engine.EntityAbsenceRequests,
		Operation: engine.OperationInserted,
		New: engine.Record{
			"id":         requestID,
			"user_id":    userID.String(),
			"type":       "sick_leave",
			"start_date": "2026-03-02",
			"end_date":   "2026-03-06",
		},
	}
}

func TestSickLeaveCreatesLedgerEntryAndNotifiesManager(t *testing.T) {
	userID := uuid.New()
	managerID := uuid.New()

	employees := new(MockEmployeeReader)
	employees.On("GetByID", mock.Anything, userID).Return(&models.Employee{
		ID:        userID,
		Name:      "Grace Mwangi",
		ManagerID: &managerID,
	}, nil)

	shifts := new(MockShiftReader)
	shifts.On("FindOverlapping", mock.Anything, userID, mock.Anything, mock.Anything).
		Return([]models.ShiftAssignment{}, nil)

	handler := NewSickLeaveHandler(employees, shifts)
	decision, err := handler.Handle(context.Background(), sickLeaveEvent("req-1", userID))
	require.NoError(t, err)
	require.Len(t, decision.Actions, 2)

	absence, ok := decision.Actions[0].(engine.AbsenceRecordCreate)
	require.True(t, ok)
	require.Equal(t, "sick_leave", absence.Type)
	require.Equal(t, "absence_request:req-1", absence.Reference)

	notification, ok := decision.Actions[1].(engine.NotificationSend)
	require.True(t, ok)
	require.Equal(t, managerID, notification.Recipient)
	require.Equal(t, "manager", notification.Audience)
}

func TestSickLeaveFlagsOverlappingShifts(t *testing.T) {
	userID := uuid.New()
	shiftID := uuid.New()

	employees := new(MockEmployeeReader)
	employees.On("GetByID", mock.Anything, userID).Return(&models.Employee{ID: userID, Name: "Grace"}, nil)

	shifts := new(MockShiftReader)
	shifts.On("FindOverlapping", mock.Anything, userID, mock.Anything, mock.Anything).
		Return([]models.ShiftAssignment{
			{ID: shiftID, UserID: userID, Start: time.Now(), End: time.Now().Add(8 * time.Hour)},
		}, nil)

	handler := NewSickLeaveHandler(employees, shifts)
	decision, err := handler.Handle(context.Background(), sickLeaveEvent("req-2", userID))
	require.NoError(t, err)
	require.Len(t, decision.Actions, 3)

	flag, ok := decision.Actions[2].(engine.ShiftCoverageFlag)
	require.True(t, ok)
	require.Equal(t, shiftID, flag.ShiftID)
	require.Equal(t, "sick_leave", flag.Reason)
}

func TestSickLeaveShiftLookupFailureKeepsCoreActions(t *testing.T) {
	userID := uuid.New()

	employees := new(MockEmployeeReader)
	employees.On("GetByID", mock.Anything, userID).Return(&models.Employee{ID: userID, Name: "Grace"}, nil)

	shifts := new(MockShiftReader)
	shifts.On("FindOverlapping", mock.Anything, userID, mock.Anything, mock.Anything).
		Return(nil, errors.New("shift service down"))

	handler := NewSickLeaveHandler(employees, shifts)
	decision, err := handler.Handle(context.Background(), sickLeaveEvent("req-3", userID))
	require.NoError(t, err)
	require.Len(t, decision.Actions, 2)
}

func TestSickLeaveRejectsIncompleteEvent(t *testing.T) {
	handler := NewSickLeaveHandler(new(MockEmployeeReader), new(MockShiftReader))

	_, err := handler.Handle(context.Background(), engine.ChangeEvent{
		Entity:    engine.EntityAbsenceRequests,
		Operation: engine.OperationInserted,
		New:       engine.Record{"type": "sick_leave"},
	})
	require.Error(t, err)
}
