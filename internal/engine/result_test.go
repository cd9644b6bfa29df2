package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestBuildResultAllSucceeded(t *testing.T) {
	decision := Decision{Category: "payroll"}
	outcomes := []ActionOutcome{
		{Action: DocumentTag{DocumentID: uuid.New(), Category: "payroll"}},
		{Action: NotificationSend{Audience: "payroll"}},
	}

	result := BuildResult("document_uploaded", decision, outcomes)

	require.Equal(t, OutcomeActionsSucceeded, result.Outcome)
	require.Len(t, result.Actions, 2)
	require.Empty(t, result.Failed)
	require.Equal(t, "payroll", result.Category)
	require.True(t, result.Success())
}

func TestBuildResultPartialFailure(t *testing.T) {
	outcomes := []ActionOutcome{
		{Action: BudgetCharge{CostCenter: "CC-1", Amount: 100, Reference: "trip:1"}},
		{Action: CalendarSync{Reference: "trip:1"}, Err: errors.New("calendar unavailable")},
		{Action: AbsenceRecordCreate{Reference: "trip:1"}},
	}

	result := BuildResult("business_trip_approved", Decision{}, outcomes)

	require.Equal(t, OutcomePartial, result.Outcome)
	require.Len(t, result.Actions, 2)
	require.Len(t, result.Failed, 1)
	require.Equal(t, TargetCalendar, result.Failed[0].Target)
	require.Equal(t, "calendar unavailable", result.Error)
	require.True(t, result.Success())
}

func TestBuildResultAllFailed(t *testing.T) {
	outcomes := []ActionOutcome{
		{Action: BudgetCharge{}, Err: errors.New("db down")},
		{Action: NotificationSend{}, Err: errors.New("db down")},
	}

	result := BuildResult("business_trip_approved", Decision{}, outcomes)

	require.Equal(t, OutcomeFailed, result.Outcome)
	require.Empty(t, result.Actions)
	require.Len(t, result.Failed, 2)
	require.False(t, result.Success())
}

func TestBuildResultNoActionNeeded(t *testing.T) {
	result := BuildResult("time_tracking_completed", Decision{}, nil)

	require.Equal(t, OutcomeNoActionNeeded, result.Outcome)
	require.Empty(t, result.Actions)
	require.True(t, result.Success())
}

func TestFailureResult(t *testing.T) {
	result := FailureResult("sick_leave_created", errors.New("employee not found"))

	require.Equal(t, OutcomeFailed, result.Outcome)
	require.Equal(t, "sick_leave_created", result.Handler)
	require.Equal(t, "employee not found", result.Error)
	require.Empty(t, result.Actions)
}
