package handlers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"example.com/peoplehub/services/automation/internal/engine"
)

func TestOnboardingDeclaresProvisioningActions(t *testing.T) {
	employeeID := uuid.New()
	managerID := uuid.New()

	handler := NewOnboardingHandler()
	decision, err := handler.Handle(context.Background(), engine.ChangeEvent{
		Entity:    "manual:" + NameEmployeeOnboarding,
		Operation: engine.OperationInserted,
		New: engine.Record{
			"employee_id": employeeID.String(),
			"manager_id":  managerID.String(),
			"name":        "Amina Yusuf",
			"start_date":  "2026-09-01",
		},
	})
	require.NoError(t, err)
	require.Len(t, decision.Actions, 5)

	equipment, ok := decision.Actions[0].(engine.ApprovalRequestCreate)
	require.True(t, ok)
	require.Equal(t, engine.ApprovalEquipment, equipment.Queue)
	require.Equal(t, managerID, equipment.ApproverID)

	calendar, ok := decision.Actions[1].(engine.CalendarSync)
	require.True(t, ok)
	require.Equal(t, employeeID, calendar.UserID)

	welcome, ok := decision.Actions[2].(engine.NotificationSend)
	require.True(t, ok)
	require.Equal(t, employeeID, welcome.Recipient)

	it, ok := decision.Actions[3].(engine.NotificationSend)
	require.True(t, ok)
	require.Equal(t, "it", it.Audience)

	manager, ok := decision.Actions[4].(engine.NotificationSend)
	require.True(t, ok)
	require.Equal(t, managerID, manager.Recipient)
}

func TestOnboardingWithoutManagerSkipsManagerNotice(t *testing.T) {
	handler := NewOnboardingHandler()
	decision, err := handler.Handle(context.Background(), engine.ChangeEvent{
		Entity:    "manual:" + NameEmployeeOnboarding,
		Operation: engine.OperationInserted,
		New: engine.Record{
			"employee_id": uuid.New().String(),
			"name":        "Amina Yusuf",
			"start_date":  "2026-09-01",
		},
	})
	require.NoError(t, err)
	require.Len(t, decision.Actions, 4)
}

func TestOnboardingRejectsMissingStartDate(t *testing.T) {
	handler := NewOnboardingHandler()
	_, err := handler.Handle(context.Background(), engine.ChangeEvent{
		Entity:    "manual:" + NameEmployeeOnboarding,
		Operation: engine.OperationInserted,
		New:       engine.Record{"employee_id": uuid.New().String()},
	})
	require.Error(t, err)
}
