package iocache

import (
	"time"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetVault implements the StoreManager interface.
func (m *MockStoreManager) GetVault() contract.ReportVault {
	ret := m.Called()
	vault, _ := ret.Get(0).(contract.ReportVault)
	return vault
}

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockReportVault is a mock implementation of ReportVault for testing.
type MockReportVault struct {
	mock.Mock
}

var _ contract.ReportVault = &MockReportVault{} // Compile-time check

// Put implements the ReportVault interface.
func (m *MockReportVault) Put(section schema.Section, snapshot any) error {
	args := m.Called(section, snapshot)
	return args.Error(0)
}

// GetAll implements the ReportVault interface.
func (m *MockReportVault) GetAll() (map[schema.Section]schema.VaultEntry, error) {
	args := m.Called()
	entries, _ := args.Get(0).(map[schema.Section]schema.VaultEntry)
	return entries, args.Error(1)
}

// GetStatus implements the ReportVault interface.
func (m *MockReportVault) GetStatus() (schema.VaultStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.VaultStatus), args.Error(1)
}

// Close implements the ReportVault interface.
func (m *MockReportVault) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(operation string, modality schema.Modality, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(operation, modality, startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, totalItems int, consistencyScore *float64) error {
	args := m.Called(runID, endTime, totalItems, consistencyScore)
	return args.Error(0)
}

// RecordSegments implements the RunStore interface.
func (m *MockRunStore) RecordSegments(runID int64, segments []schema.ScoredSegment) error {
	args := m.Called(runID, segments)
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStatus), args.Error(1)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllSegments implements the RunStore interface.
func (m *MockRunStore) GetAllSegments() ([]schema.SegmentScoreRecord, error) {
	args := m.Called()
	segments, _ := args.Get(0).([]schema.SegmentScoreRecord)
	return segments, args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
