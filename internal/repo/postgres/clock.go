package postgres

import "time"

// Now is the current UTC time at the microsecond precision TIMESTAMPTZ keeps,
// so values returned from Create match what a later read sees.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
