package util

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue == 0:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e3 && absValue < 1e6:
		return fmt.Sprintf("%.3f k%s", value/1e3, unit)
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

// UnitOf picks the display unit of a result key such as V(out) or I(R1).
func UnitOf(key string) string {
	switch {
	case strings.HasPrefix(key, "V("):
		return "V"
	case strings.HasPrefix(key, "I("):
		return "A"
	case key == "TIME":
		return "s"
	default:
		return ""
	}
}

// SortedKeys returns the result keys in display order: voltages, then
// currents, each sorted by name. TIME is left out.
func SortedKeys(results map[string][]float64) []string {
	var voltages, currents, other []string
	for name := range results {
		switch UnitOf(name) {
		case "V":
			voltages = append(voltages, name)
		case "A":
			currents = append(currents, name)
		case "s":
		default:
			other = append(other, name)
		}
	}
	sort.Strings(voltages)
	sort.Strings(currents)
	sort.Strings(other)
	return append(append(voltages, currents...), other...)
}
