package parallel

import "errors"

var (
	// ErrOverlappingRegions is returned under mem.Strict when an update
	// function returns subregions that overlap or leave their parent.
	ErrOverlappingRegions = errors.New("parallel: overlapping or escaping subregions")
	// ErrTooManyRecords is returned by Select for stores beyond 2^32 records.
	ErrTooManyRecords = errors.New("parallel: record count exceeds selection range")
	// ErrForeignRegion is returned when a subregion belongs to another store.
	ErrForeignRegion = errors.New("parallel: subregion of a different store")
)
