package errorlog

import "errors"

// Sentinel kinds for log file errors. ErrLogMissing and ErrNoRecords are
// expected early in a pipeline's life, before the first correlation lands.
var (
	ErrAppend     = errors.New("append error record failed")
	ErrRead       = errors.New("read error log failed")
	ErrLogMissing = errors.New("error log does not exist yet")
	ErrNoRecords  = errors.New("error log has no records")
)
