package render

import (
	"fmt"
	"math"
	"strings"
)

const barWidth = 10

func bar(filled int) string {
	filled = max(0, min(filled, barWidth))
	return strings.Repeat("▰", filled) + strings.Repeat("▱", barWidth-filled)
}

// UsageBar renders "▰▰▱▱▱▱▱▱▱▱ used/total". Overuse saturates the bar.
func UsageBar(used, total int) string {
	ratio := 1.0
	if total > 0 {
		ratio = math.Min(float64(used)/float64(total), 1)
	}
	return fmt.Sprintf("%s %d/%d", bar(int(ratio*barWidth)), used, total)
}

// StepBar renders "▰▰▰▱▱▱▱▱▱▱ - 33%" for step of total.
func StepBar(step, total int) string {
	if total <= 0 {
		return bar(0) + " - 0%"
	}
	ratio := float64(step) / float64(total)
	return fmt.Sprintf("%s - %d%%", bar(int(ratio*barWidth)), int(math.Round(ratio*100)))
}

// percent formats part of whole with one decimal, or "0" for an empty whole.
func percent(part, whole int) string {
	if whole <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(part)/float64(whole)*100)
}
