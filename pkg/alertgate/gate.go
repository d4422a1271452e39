// Package alertgate decides whether a low-battery reading should turn into
// a push alert. It is a pure function over its inputs: the caller reads the
// per-device tracker state, evaluates, dispatches the message, and persists
// the returned next state only after the send is confirmed.
package alertgate

import "time"

const (
	DefaultThreshold = 20
	DefaultCooldown  = 24 * time.Hour
	DefaultMinDrop   = 5
)

// Policy is the tunable part of the gate. Zero values mean "use default".
type Policy struct {
	// Threshold is the battery percentage at or below which alerts become
	// eligible.
	Threshold int
	// Cooldown is the minimum interval between two alerts for one device.
	Cooldown time.Duration
	// MinDrop is the minimum additional percentage-point drop required to
	// re-alert once the cooldown has expired.
	MinDrop int
}

func DefaultPolicy() Policy {
	return Policy{
		Threshold: DefaultThreshold,
		Cooldown:  DefaultCooldown,
		MinDrop:   DefaultMinDrop,
	}
}

// OrDefaults fills unset fields from DefaultPolicy.
func (p Policy) OrDefaults() Policy {
	if p.Threshold == 0 {
		p.Threshold = DefaultThreshold
	}
	if p.Cooldown == 0 {
		p.Cooldown = DefaultCooldown
	}
	if p.MinDrop == 0 {
		p.MinDrop = DefaultMinDrop
	}
	return p
}

// State mirrors the persisted per-device tracker fields the gate consumes.
type State struct {
	LastAlertAt         time.Time
	BatteryLevelAtAlert int
	AlertCount          int
}

type Reason string

const (
	ReasonAboveThreshold Reason = "above_threshold"
	ReasonFirstAlert     Reason = "first_alert"
	ReasonCooldownActive Reason = "cooldown_active"
	ReasonDropTooSmall   Reason = "drop_too_small"
	ReasonDropReached    Reason = "drop_reached"
)

type Decision struct {
	Emit   bool
	Reason Reason
	// Drop is battery_level_at_alert - current level. Only meaningful for
	// post-cooldown decisions; may be negative if the battery rose.
	Drop int
	// Next is the state the caller must persist after a confirmed send.
	// Only set when Emit is true.
	Next State
}

// Evaluate applies the three-tier policy in order: threshold gate,
// first-alert bypass, then cooldown-or-drop. The cooldown is an absolute
// floor on alert frequency; the drop test only applies after it expires.
// prior is nil when no alert was ever emitted for the device.
func Evaluate(level int, now time.Time, prior *State, p Policy) Decision {
	if level > p.Threshold {
		return Decision{Reason: ReasonAboveThreshold}
	}

	if prior == nil {
		return Decision{
			Emit:   true,
			Reason: ReasonFirstAlert,
			Next: State{
				LastAlertAt:         now,
				BatteryLevelAtAlert: level,
				AlertCount:          1,
			},
		}
	}

	if now.Sub(prior.LastAlertAt) >= p.Cooldown {
		drop := prior.BatteryLevelAtAlert - level
		if drop >= p.MinDrop {
			return Decision{
				Emit:   true,
				Reason: ReasonDropReached,
				Drop:   drop,
				Next: State{
					LastAlertAt:         now,
					BatteryLevelAtAlert: level,
					AlertCount:          prior.AlertCount + 1,
				},
			}
		}
		// Stuck below threshold without meaningful change; re-alerting on
		// every poll would spam the user. A negative drop (recharge that
		// stays under threshold) lands here too.
		return Decision{Reason: ReasonDropTooSmall, Drop: drop}
	}

	return Decision{Reason: ReasonCooldownActive}
}
