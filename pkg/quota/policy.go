package quota

import "math"

// Plan labels the merchant's current tier on the usage banner
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Badge is the call-to-action shown next to the usage bar
type Badge string

const (
	BadgeProPlan          Badge = "pro_plan"
	BadgeLimitReached     Badge = "limit_reached"
	BadgeUnlockFullAccess Badge = "unlock_full_access"
)

// UpgradePath is where the banner sends merchants who want more orders
const UpgradePath = "/upgrade"

// State is a derived view of a merchant's order consumption. It is never persisted.
type State struct {
	Used           int     `json:"used"`
	Limit          int     `json:"limit"`
	IsPaid         bool    `json:"is_paid"`
	// Ratio is the unrounded used/limit percentage and may exceed 100
	Ratio float64 `json:"ratio"`
	// DisplayPercent is Ratio capped at 100 and rounded to one decimal
	DisplayPercent float64 `json:"display_percent"`
	Remaining      int     `json:"remaining"`
	LimitReached   bool    `json:"limit_reached"`
	Degenerate     bool    `json:"degenerate"`
	Plan           Plan    `json:"plan"`
	Badge          Badge   `json:"badge"`
	UpgradeURL     string  `json:"upgrade_url,omitempty"`
}

// Evaluate computes the quota state for used orders against limit.
//
// Paid merchants never reach the limit. A non-positive limit is treated as
// fully consumed: the ratio is pinned at 100 and the state is flagged
// Degenerate rather than dividing by zero.
func Evaluate(used, limit int, isPaid bool) State {
	if used < 0 {
		used = 0
	}

	s := State{
		Used:   used,
		Limit:  limit,
		IsPaid: isPaid,
		Plan:   PlanFree,
	}
	if isPaid {
		s.Plan = PlanPro
	}

	if limit <= 0 {
		s.Degenerate = true
		s.Ratio = 100
		s.DisplayPercent = 100
		s.LimitReached = !isPaid
	} else {
		s.Ratio = float64(used) / float64(limit) * 100
		s.DisplayPercent = roundTenth(math.Min(s.Ratio, 100))
		s.LimitReached = !isPaid && used >= limit
		s.Remaining = max(limit-used, 0)
	}

	switch {
	case isPaid:
		s.Badge = BadgeProPlan
	case s.LimitReached:
		s.Badge = BadgeLimitReached
		s.UpgradeURL = UpgradePath
	default:
		s.Badge = BadgeUnlockFullAccess
		s.UpgradeURL = UpgradePath
	}

	return s
}

// Outcome is a low-cardinality label for metrics
func (s State) Outcome() string {
	switch {
	case s.IsPaid:
		return "paid"
	case s.Degenerate:
		return "degenerate"
	case s.LimitReached:
		return "reached"
	default:
		return "within"
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
