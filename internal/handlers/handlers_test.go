package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/peoplehub/services/automation/internal/engine"
	"example.com/peoplehub/services/automation/internal/models"
)

// Mock readers shared by the handler tests

type MockEmployeeReader struct {
	mock.Mock
}

func (m *MockEmployeeReader) GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}

type MockTimeReader struct {
	mock.Mock
}

func (m *MockTimeReader) HoursForDay(ctx context.Context, userID uuid.UUID, day time.Time) (float64, error) {
	args := m.Called(ctx, userID, day)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockTimeReader) HoursForWeek(ctx context.Context, userID uuid.UUID, day time.Time) (float64, error) {
	args := m.Called(ctx, userID, day)
	return args.Get(0).(float64), args.Error(1)
}

type MockShiftReader struct {
	mock.Mock
}

func (m *MockShiftReader) FindOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.ShiftAssignment, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ShiftAssignment), args.Error(1)
}

type MockBudgetReader struct {
	mock.Mock
}

func (m *MockBudgetReader) Available(ctx context.Context, costCenter string) (float64, error) {
	args := m.Called(ctx, costCenter)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockBudgetReader) IsCharged(ctx context.Context, reference string) (bool, error) {
	args := m.Called(ctx, reference)
	return args.Bool(0), args.Error(1)
}

type MockApprovalReader struct {
	mock.Mock
}

func (m *MockApprovalReader) HasOpenRequest(ctx context.Context, reference string) (bool, error) {
	args := m.Called(ctx, reference)
	return args.Bool(0), args.Error(1)
}

type MockAbsenceReader struct {
	mock.Mock
}

func (m *MockAbsenceReader) FindOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.AbsenceRecord, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AbsenceRecord), args.Error(1)
}

func TestRegisterAllCoversEveryWorkflow(t *testing.T) {
	registry := engine.NewRegistry()
	RegisterAll(registry, Deps{})

	require.Equal(t, 9, registry.Len())

	require.Len(t, registry.Match(engine.EntityAbsenceRequests, engine.OperationInserted), 1)
	require.Len(t, registry.Match(engine.EntityDocuments, engine.OperationInserted), 1)
	require.Len(t, registry.Match(engine.EntityTimeEntries, engine.OperationInserted), 1)
	require.Len(t, registry.Match(engine.EntityBusinessTrips, engine.OperationInserted), 1)
	require.Len(t, registry.Match(engine.EntityBusinessTrips, engine.OperationUpdated), 2)
	require.Len(t, registry.Match(engine.EntityBusinessTripExpenses, engine.OperationInserted), 1)

	for _, name := range []string{NameEmployeeOnboarding, NameShiftPlanUpdate} {
		handler, ok := registry.Lookup(name)
		require.True(t, ok, name)
		require.Equal(t, name, handler.Name())
	}
}
