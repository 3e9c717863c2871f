package wizard

import (
	"fmt"
	"math"
	"time"

	"github.com/m3rciful/signalbot/bot/catalog"
	"github.com/m3rciful/signalbot/bot/session"
)

// Reason names why a transition was refused.
type Reason string

const (
	ReasonNoAI          Reason = "no_ai"
	ReasonCooldown      Reason = "cooldown"
	ReasonDailyLimit    Reason = "daily_limit"
	ReasonIncomplete    Reason = "incomplete"
	ReasonInvalidChoice Reason = "invalid_choice"
)

// Rejection is returned by Transition when an event is refused. The
// state is unchanged.
type Rejection struct {
	Reason Reason
	Kind   catalog.Kind
	// Wait is the remaining cooldown.
	Wait time.Duration
}

func (r *Rejection) Error() string {
	if r.Reason == ReasonCooldown {
		return fmt.Sprintf("wizard: %s %s (%ds left)", r.Kind, r.Reason, r.SecondsLeft())
	}
	return fmt.Sprintf("wizard: %s %s", r.Kind, r.Reason)
}

// Code implements the error-code hook used by the handler summary log.
func (r *Rejection) Code() string { return string(r.Reason) }

// SecondsLeft rounds the remaining cooldown up to whole seconds.
func (r *Rejection) SecondsLeft() int {
	return int(math.Ceil(r.Wait.Seconds()))
}

type usage struct {
	count int
	last  time.Time
}

// Gate is a snapshot of everything the entry guard looks at.
type Gate struct {
	AI    string
	Tier  catalog.Tier
	Now   time.Time
	usage map[catalog.Kind]usage
}

// NewGate captures the guard inputs from a record.
func NewGate(rec *session.Record, policy *catalog.Policy, now time.Time) Gate {
	g := Gate{
		AI:    rec.SelectedAI,
		Tier:  policy.Tier(rec.Tier),
		Now:   now,
		usage: make(map[catalog.Kind]usage, 2),
	}
	for _, kind := range []catalog.Kind{catalog.KindSignal, catalog.KindPlan} {
		count, last := rec.Usage(kind)
		g.usage[kind] = usage{count: count, last: last}
	}
	return g
}

// Check applies the entry guard for kind: an AI must be selected, the
// kind's cooldown must have elapsed and its daily counter must be below
// the tier limit. Checks run in that order.
func (g Gate) Check(kind catalog.Kind) *Rejection {
	if g.AI == "" {
		return &Rejection{Reason: ReasonNoAI, Kind: kind}
	}
	limit := g.Tier.Limit(kind)
	u := g.usage[kind]
	if !u.last.IsZero() {
		if elapsed := g.Now.Sub(u.last); elapsed < limit.Cooldown {
			return &Rejection{Reason: ReasonCooldown, Kind: kind, Wait: limit.Cooldown - elapsed}
		}
	}
	if u.count >= limit.Daily {
		return &Rejection{Reason: ReasonDailyLimit, Kind: kind}
	}
	return nil
}
