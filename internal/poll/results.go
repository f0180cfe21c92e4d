package poll

import (
	"fmt"
	"time"
)

// OptionResult is one row of the results view
type OptionResult struct {
	Label      string  `json:"label"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
	Leader     bool    `json:"leader"`
}

// Results is the revealed tally of a poll
type Results struct {
	Options []OptionResult `json:"options"`
	Total   int            `json:"total"`
}

// ComputeResults turns index-aligned options and tally into result rows.
// Every option holding the maximum count leads, unless nobody has voted.
func ComputeResults(options []string, tally []int) Results {
	total := 0
	top := 0
	for i := range options {
		n := countAt(tally, i)
		total += n
		if n > top {
			top = n
		}
	}

	rows := make([]OptionResult, len(options))
	for i, label := range options {
		n := countAt(tally, i)
		pct := 0.0
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		rows[i] = OptionResult{
			Label:      label,
			Votes:      n,
			Percentage: pct,
			Leader:     top > 0 && n == top,
		}
	}
	return Results{Options: rows, Total: total}
}

func countAt(tally []int, i int) int {
	if i < len(tally) {
		return tally[i]
	}
	return 0
}

// FormatPercent renders a percentage with one decimal place, e.g. "66.7%"
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// Remaining is the countdown shown next to an active poll
type Remaining struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Expired bool `json:"expired"`
}

// TimeRemaining splits the whole seconds left until expiresAt
func TimeRemaining(expiresAt, now time.Time) Remaining {
	secs := int64(expiresAt.Sub(now) / time.Second)
	if secs <= 0 {
		return Remaining{Expired: true}
	}
	return Remaining{
		Days:    int(secs / 86400),
		Hours:   int(secs % 86400 / 3600),
		Minutes: int(secs % 3600 / 60),
	}
}

func (r Remaining) String() string {
	if r.Expired {
		return "0h 0m"
	}
	if r.Days > 0 {
		return fmt.Sprintf("%dd %dh %dm", r.Days, r.Hours, r.Minutes)
	}
	return fmt.Sprintf("%dh %dm", r.Hours, r.Minutes)
}

// StatusText is the line shown under the question for each lifecycle state
func StatusText(lifecycle Lifecycle, r Remaining) string {
	switch lifecycle {
	case Active:
		if r.Expired {
			return ""
		}
		return "Ends in " + r.String()
	case Ended:
		return "Poll has ended"
	case NotStarted:
		return "Poll not started yet"
	default:
		return ""
	}
}
