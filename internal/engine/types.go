package engine

import (
	"fmt"
	"strings"
)

// Tier is one of three escalating effort levels for a template.
// Stored and compared as an ordinal so the cumulative checklist rule is a
// plain integer comparison; string forms exist only at the CLI/DB edge.
type Tier int

const (
	TierLow    Tier = 1
	TierMedium Tier = 2
	TierHigh   Tier = 3
)

func (t Tier) IsValid() bool {
	return t >= TierLow && t <= TierHigh
}

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Next returns the tier one step up. Upgrades never skip a tier.
func (t Tier) Next() (Tier, bool) {
	if t >= TierHigh {
		return t, false
	}
	return t + 1, true
}

// ParseTier parses user input ("low"/"medium"/"high", plus short aliases).
func ParseTier(input string) (Tier, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "low", "l", "1":
		return TierLow, nil
	case "medium", "med", "m", "2":
		return TierMedium, nil
	case "high", "h", "3":
		return TierHigh, nil
	default:
		return 0, ValidationError{Msg: fmt.Sprintf("invalid tier: %q", input)}
	}
}

type Recurrence string

const (
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
	RecurrenceBonus  Recurrence = "bonus"
)

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceBonus:
		return true
	default:
		return false
	}
}

func ParseRecurrence(input string) (Recurrence, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	r := Recurrence(s)
	if !r.IsValid() {
		return "", ValidationError{Msg: fmt.Sprintf("invalid recurrence: %q", input)}
	}
	return r, nil
}

// Categories is the fixed set of task categories.
var Categories = []string{
	"Work",
	"Coding / Personal Projects",
	"Cleaning",
	"Adulting",
	"Doby",
	"Social",
	"Errands",
	"Self Care",
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
