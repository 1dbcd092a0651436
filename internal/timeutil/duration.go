package timeutil

import (
	"fmt"
	"math"
)

// FormatSeconds renders a duration as "Xh Ym", dropping a zero component.
func FormatSeconds(seconds int) string {
	return FormatFractionalSeconds(float64(seconds))
}

// FormatFractionalSeconds floors both components. The remainder keeps the sign
// of the dividend, so negative inputs come out as e.g. "-1h -1m" for -60.
func FormatFractionalSeconds(seconds float64) string {
	hours := int(math.Floor(seconds / 3600))
	minutes := int(math.Floor(math.Mod(seconds, 3600) / 60))

	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
