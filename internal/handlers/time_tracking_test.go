package handlers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/peoplehub/services/automation/internal/engine"
	"example.com/peoplehub/services/automation/internal/models"
)

func timeEntryEvent(userID uuid.UUID) engine.ChangeEvent {
	return engine.ChangeEvent{
		Entity:    engine.EntityTimeEntries,
		Operation: engine.OperationInserted,
		New: engine.Record{
			"user_id": userID.String(),
			"date":    "2026-03-04",
			"hours":   4.0,
		},
	}
}

func TestTimeTrackingUnderThresholdNeedsNoAction(t *testing.T) {
	userID := uuid.New()

	entries := new(MockTimeReader)
	entries.On("HoursForDay", mock.Anything, userID, mock.Anything).Return(8.0, nil)
	entries.On("HoursForWeek", mock.Anything, userID, mock.Anything).Return(40.0, nil)

	handler := NewTimeTrackingHandler(entries, new(MockEmployeeReader), new(MockApprovalReader), 10, 48)
	decision, err := handler.Handle(context.Background(), timeEntryEvent(userID))
	require.NoError(t, err)
	require.Empty(t, decision.Actions)
}

func TestTimeTrackingDailyOvertimeOpensApprovalRequest(t *testing.T) {
	userID := uuid.New()
	managerID := uuid.New()

	entries := new(MockTimeReader)
	entries.On("HoursForDay", mock.Anything, userID, mock.Anything).Return(11.5, nil)
	entries.On("HoursForWeek", mock.Anything, userID, mock.Anything).Return(42.0, nil)

	approvals := new(MockApprovalReader)
	approvals.On("HasOpenRequest", mock.Anything, mock.Anything).Return(false, nil)

	employees := new(MockEmployeeReader)
	employees.On("GetByID", mock.Anything, userID).Return(&models.Employee{
		ID:        userID,
		Name:      "Otieno",
		ManagerID: &managerID,
	}, nil)

	handler := NewTimeTrackingHandler(entries, employees, approvals, 10, 48)
	decision, err := handler.Handle(context.Background(), timeEntryEvent(userID))
	require.NoError(t, err)
	require.Len(t, decision.Actions, 1)

	request, ok := decision.Actions[0].(engine.ApprovalRequestCreate)
	require.True(t, ok)
	require.Equal(t, engine.ApprovalOvertime, request.Queue)
	require.Equal(t, userID, request.RequesterID)
	require.Equal(t, managerID, request.ApproverID)
	// 2026-03-04 is a Wednesday; the week key is its Monday
	require.Equal(t, "overtime:"+userID.String()+":2026-03-02", request.Reference)
}

func TestTimeTrackingWeeklyOvertimeAlsoFires(t *testing.T) {
	userID := uuid.New()

	entries := new(MockTimeReader)
	entries.On("HoursForDay", mock.Anything, userID, mock.Anything).Return(8.0, nil)
	entries.On("HoursForWeek", mock.Anything, userID, mock.Anything).Return(50.0, nil)

	approvals := new(MockApprovalReader)
	approvals.On("HasOpenRequest", mock.Anything, mock.Anything).Return(false, nil)

	employees := new(MockEmployeeReader)
	employees.On("GetByID", mock.Anything, userID).Return(&models.Employee{ID: userID, Name: "Otieno"}, nil)

	handler := NewTimeTrackingHandler(entries, employees, approvals, 10, 48)
	decision, err := handler.Handle(context.Background(), timeEntryEvent(userID))
	require.NoError(t, err)
	require.Len(t, decision.Actions, 1)
}

func TestTimeTrackingSkipsWhenRequestAlreadyOpen(t *testing.T) {
	userID := uuid.New()

	entries := new(MockTimeReader)
	entries.On("HoursForDay", mock.Anything, userID, mock.Anything).Return(12.0, nil)
	entries.On("HoursForWeek", mock.Anything, userID, mock.Anything).Return(52.0, nil)

	approvals := new(MockApprovalReader)
	approvals.On("HasOpenRequest", mock.Anything, mock.Anything).Return(true, nil)

	employees := new(MockEmployeeReader)

	handler := NewTimeTrackingHandler(entries, employees, approvals, 10, 48)
	decision, err := handler.Handle(context.Background(), timeEntryEvent(userID))
	require.NoError(t, err)
	require.Empty(t, decision.Actions)

	// The employee lookup is never needed when the request already exists
	employees.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}
