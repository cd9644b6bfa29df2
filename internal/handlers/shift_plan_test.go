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

func shiftPlanEvent(shifts ...map[string]interface{}) engine.ChangeEvent {
	raw := make([]interface{}, 0, len(shifts))
	for _, s := range shifts {
		raw = append(raw, s)
	}
	return engine.ChangeEvent{
		Entity:    "manual:" + NameShiftPlanUpdate,
		Operation: engine.OperationInserted,
		New:       engine.Record{"shifts": raw},
	}
}

func TestShiftPlanFlagsAbsenceConflicts(t *testing.T) {
	conflictedUser := uuid.New()
	freeUser := uuid.New()
	conflictedShift := uuid.New()

	absences := new(MockAbsenceReader)
	absences.On("FindOverlapping", mock.Anything, conflictedUser, mock.Anything, mock.Anything).
		Return([]models.AbsenceRecord{{UserID: conflictedUser, Type: "sick_leave"}}, nil)
	absences.On("FindOverlapping", mock.Anything, freeUser, mock.Anything, mock.Anything).
		Return([]models.AbsenceRecord{}, nil)

	handler := NewShiftPlanHandler(absences)
	decision, err := handler.Handle(context.Background(), shiftPlanEvent(
		map[string]interface{}{
			"id":      conflictedShift.String(),
			"user_id": conflictedUser.String(),
			"start":   "2026-05-04T08:00:00Z",
			"end":     "2026-05-04T16:00:00Z",
		},
		map[string]interface{}{
			"id":      uuid.New().String(),
			"user_id": freeUser.String(),
			"start":   "2026-05-04T08:00:00Z",
			"end":     "2026-05-04T16:00:00Z",
		},
	))
	require.NoError(t, err)
	require.Len(t, decision.Actions, 2)

	flag, ok := decision.Actions[0].(engine.ShiftCoverageFlag)
	require.True(t, ok)
	require.Equal(t, conflictedShift, flag.ShiftID)
	require.Equal(t, "absence_conflict", flag.Reason)

	notification, ok := decision.Actions[1].(engine.NotificationSend)
	require.True(t, ok)
	require.Equal(t, freeUser, notification.Recipient)
}

func TestShiftPlanSkipsMalformedShifts(t *testing.T) {
	user := uuid.New()

	absences := new(MockAbsenceReader)
	absences.On("FindOverlapping", mock.Anything, user, mock.Anything, mock.Anything).
		Return([]models.AbsenceRecord{}, nil)

	handler := NewShiftPlanHandler(absences)
	decision, err := handler.Handle(context.Background(), shiftPlanEvent(
		map[string]interface{}{"id": "not-a-uuid"},
		map[string]interface{}{
			"id":      uuid.New().String(),
			"user_id": user.String(),
			"start":   "2026-05-05T08:00:00Z",
			"end":     "2026-05-05T16:00:00Z",
		},
	))
	require.NoError(t, err)
	require.Len(t, decision.Actions, 1)
}

func TestShiftPlanRejectsEmptyPlan(t *testing.T) {
	handler := NewShiftPlanHandler(new(MockAbsenceReader))
	_, err := handler.Handle(context.Background(), engine.ChangeEvent{
		Entity:    "manual:" + NameShiftPlanUpdate,
		Operation: engine.OperationInserted,
		New:       engine.Record{},
	})
	require.Error(t, err)
}
