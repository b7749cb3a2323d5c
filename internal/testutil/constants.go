// Package testutil provides common constants, builders, and mocks for tests
package testutil

import "time"

const (
	// TestTimeout is the default timeout for test operations
	TestTimeout = 30 * time.Second

	// ShortTestTimeout is a shorter timeout for quick operations
	ShortTestTimeout = 5 * time.Second

	// TestConcurrency is a common worker count for concurrency tests
	TestConcurrency = 8

	// TestIterations is a common iteration count for race detection tests
	TestIterations = 20
)

// Common test strings
const (
	// TestSchemaName is a default test schema name
	TestSchemaName = "sdss_dr16"

	// TestTableName is a default test table name
	TestTableName = "specobj"

	// TestDescription is a default schema description
	TestDescription = "Test schema for unit tests"
)
