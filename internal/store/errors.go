package store

import "errors"

var (
	// ErrUnknownDriver is returned by [NewBackend] for an unsupported driver.
	ErrUnknownDriver = errors.New("unknown storage driver")

	// ErrBackendClosed is returned by operations on a closed backend.
	ErrBackendClosed = errors.New("storage backend is closed")
)

// Low-level database operation errors. These are wrapped into
// *models.BackendError by the SQLite backend.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan entry row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan entry rows")
)
