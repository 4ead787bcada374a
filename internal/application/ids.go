package application

import (
	"fmt"
	"regexp"
	"strconv"
)

// NextPrefixID allocates the next identifier in a prefix+counter scheme, such
// as T001 → T002. Identifiers that do not match the prefix pattern are
// ignored, so mixed id styles in the same collection are harmless. The width
// is a minimum; counters beyond it simply grow longer.
func NextPrefixID(prefix string, existing []string, width int) string {
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `(\d+)$`)
	highest := 0
	for _, id := range existing {
		match := pattern.FindStringSubmatch(id)
		if match == nil {
			continue
		}
		value, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if value > highest {
			highest = value
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, width, highest+1)
}
