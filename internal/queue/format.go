package queue

import "strconv"

// DefaultUnit is the suffix of the rendered rate, "typings per minute".
const DefaultUnit = "tpm"

// FormatRate renders a rate the way the status text shows it, e.g. "75 tpm".
func FormatRate(rate int64, unit string) string {
	if unit == "" {
		unit = DefaultUnit
	}

	return strconv.FormatInt(rate, 10) + " " + unit
}
