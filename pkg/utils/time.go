package utils

import "time"

// MsToTime converts milliseconds to a duration.
func MsToTime(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// TimeToMs converts a duration to fractional milliseconds.
func TimeToMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// FormatDuration rounds d to a precision suited to its magnitude.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return d.String()
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

// NowUnixMs is the current UTC time in Unix milliseconds.
func NowUnixMs() int64 {
	return time.Now().UTC().UnixMilli()
}
