package testutil

import (
	"sync"

	"github.com/astro-datalab/dlfelis/internal/felis"
)

// MockSource implements the converter's schema source interface over an
// in-memory document, with error injection and call counting.
type MockSource struct {
	mu sync.RWMutex

	schema     *felis.Schema
	errors     map[string]error
	callCounts map[string]int
}

// MockSourceOption is a functional option for configuring MockSource
type MockSourceOption func(*MockSource)

// WithSourceError sets an error for a specific operation. Operation names
// are the method names: ListTables, ListColumns, ListConstraints,
// ListIndexes.
func WithSourceError(op string, err error) MockSourceOption {
	return func(m *MockSource) {
		m.errors[op] = err
	}
}

// NewMockSource creates a mock source backed by the given document.
func NewMockSource(schema *felis.Schema, opts ...MockSourceOption) *MockSource {
	mock := &MockSource{
		schema:     schema,
		errors:     make(map[string]error),
		callCounts: make(map[string]int),
	}

	for _, opt := range opts {
		opt(mock)
	}

	return mock
}

// SchemaName returns the document's schema name.
func (m *MockSource) SchemaName() string {
	m.recordCall("SchemaName")
	return m.schema.SchemaName()
}

// SchemaDescription returns the document's schema description.
func (m *MockSource) SchemaDescription() string {
	m.recordCall("SchemaDescription")
	return m.schema.SchemaDescription()
}

// SchemaUtype returns the document's schema utype.
func (m *MockSource) SchemaUtype() string {
	m.recordCall("SchemaUtype")
	return m.schema.SchemaUtype()
}

// ListTables returns the document's tables.
func (m *MockSource) ListTables() []felis.Table {
	m.recordCall("ListTables")
	return m.schema.ListTables()
}

// ListColumns returns the named table's columns unless an error is injected.
func (m *MockSource) ListColumns(table string) ([]felis.Column, error) {
	m.recordCall("ListColumns")

	if err := m.injectedError("ListColumns"); err != nil {
		return nil, err
	}

	return m.schema.ListColumns(table)
}

// ListConstraints returns the named table's constraints unless an error is injected.
func (m *MockSource) ListConstraints(table string) ([]felis.Constraint, error) {
	m.recordCall("ListConstraints")

	if err := m.injectedError("ListConstraints"); err != nil {
		return nil, err
	}

	return m.schema.ListConstraints(table)
}

// ListIndexes returns the named table's indexes unless an error is injected.
func (m *MockSource) ListIndexes(table string) ([]felis.Index, error) {
	m.recordCall("ListIndexes")

	if err := m.injectedError("ListIndexes"); err != nil {
		return nil, err
	}

	return m.schema.ListIndexes(table)
}

// CallCount returns how many times the named operation was invoked.
func (m *MockSource) CallCount(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.callCounts[op]
}

func (m *MockSource) recordCall(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCounts[op]++
}

func (m *MockSource) injectedError(op string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.errors[op]
}
