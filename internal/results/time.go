package results

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseElapsed converts an elapsed-time string to seconds. Supported
// formats: MM:SS, HH:MM:SS, and fractional seconds such as "18:30.5".
func ParseElapsed(timeStr string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(timeStr), ":")

	switch len(parts) {
	case 2:
		minutes, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time format %q: %w", timeStr, err)
		}
		seconds, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time format %q: %w", timeStr, err)
		}
		return minutes*60 + seconds, nil
	case 3:
		hours, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time format %q: %w", timeStr, err)
		}
		minutes, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time format %q: %w", timeStr, err)
		}
		seconds, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time format %q: %w", timeStr, err)
		}
		return hours*3600 + minutes*60 + seconds, nil
	default:
		return 0, fmt.Errorf("invalid time format %q", timeStr)
	}
}

// FormatElapsed renders seconds as H:MM:SS or MM:SS
func FormatElapsed(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
