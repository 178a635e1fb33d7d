package core

import (
	"strconv"
	"strings"
)

// ParseAmount converts a raw numeric field to a whole-unit amount. Thousands
// separators and surrounding quotes are stripped; anything that still fails
// to parse is treated as zero, never rejected. Availability over strict
// fidelity is the contract here.
func ParseAmount(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some sources emit decimals; keep the integer part.
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int64(f)
		}
		return 0
	}
	return v
}
