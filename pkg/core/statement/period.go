package statement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var quarterLabel = regexp.MustCompile(`(?i)^Q([1-4])\s*(?:FY)?\s*'?(\d{4}|\d{2})$`)

// ParsePeriod converts a period header into the period's end date. Month/day
// headers ("9/30/2021", "Sep 30, 2021") go through dateparse; quarter labels
// ("Q3 2021") resolve to the last day of that quarter.
func ParsePeriod(header string) (time.Time, error) {
	h := strings.TrimSpace(header)
	if m := quarterLabel.FindStringSubmatch(h); m != nil {
		q, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		if year < 100 {
			year += 2000
		}
		// day 0 of the following month is the quarter's last day
		return time.Date(year, time.Month(q*3+1), 0, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := dateparse.ParseIn(h, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse period header %q: %w", header, err)
	}
	return t, nil
}
