package worktime

import (
	"fmt"
	"strconv"
)

const (
	TimeLayout     = "15:04:05"
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
)

// FormatHHMM renders seconds as hours and minutes; hours are not capped at 24.
func FormatHHMM(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/3600, (seconds%3600)/60)
}

func FormatHHMMSS(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// FormatHours renders an estimate without trailing zeros.
func FormatHours(h Hours) string {
	return strconv.FormatFloat(float64(h), 'f', -1, 64)
}

// DeviationLabel compares time spent against the estimate.
func DeviationLabel(estimate Hours, spentSeconds int64) string {
	diff := spentSeconds - int64(float64(estimate)*3600)
	switch {
	case diff > 0:
		return "delayed by " + FormatHHMM(diff)
	case diff < 0:
		return "early by " + FormatHHMM(-diff)
	default:
		return "on time"
	}
}

func phaseLabel(n int) string {
	return fmt.Sprintf("Phase %d", n)
}
