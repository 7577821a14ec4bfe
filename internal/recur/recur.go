// Package recur computes the next due timestamp for a recurring reminder.
package recur

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Next returns the due timestamp that follows current under rule.
//
// Supported frequencies are DAILY, WEEKLY and MONTHLY, each multiplied by
// INTERVAL (default 1). MONTHLY uses AddDate, so month-end dates normalize
// the way the Go calendar does: Jan 31 + 1 month is Mar 3 (Mar 2 in leap
// years), not Feb 28.
//
// A rule that cannot be parsed, has no FREQ, or names an unsupported
// frequency leaves the timestamp unchanged. Malformed rules degrade to
// no-advancement rather than failing a dispatch run.
func Next(current time.Time, rule string) time.Time {
	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	if rule == "" {
		return current
	}

	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return current
	}

	interval := opt.Interval
	if interval < 1 {
		interval = 1
	}

	switch opt.Freq {
	case rrule.DAILY:
		return current.AddDate(0, 0, interval)
	case rrule.WEEKLY:
		return current.AddDate(0, 0, 7*interval)
	case rrule.MONTHLY:
		return current.AddDate(0, interval, 0)
	default:
		// StrToROption defaults Freq to YEARLY when the rule has no FREQ
		// part, which lands here along with every other unsupported
		// frequency.
		return current
	}
}

// IsRecurring checks if the RRULE string carries a frequency at all.
func IsRecurring(rule string) bool {
	return rule != "" && strings.Contains(strings.ToUpper(rule), "FREQ=")
}
