package worktime

import "time"

// Elapsed returns whole seconds between a recorded start (Unix ms) and now,
// never negative. Live counters are always derived from it rather than from
// a ticking counter, so they survive suspension and restarts.
func Elapsed(startInstant int64, now time.Time) int64 {
	d := now.UnixMilli() - startInstant
	if d <= 0 {
		return 0
	}
	return d / 1000
}
