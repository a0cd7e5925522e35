package triage

import (
	"errors"
	"fmt"
	"strings"
)

// Tier is the severity assigned to a free-text message. Tiers are ordered
// by ascending urgency so they can be compared with < and >.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
	TierCritical
)

// Priority lists tiers in the order the classifier tests them, most urgent first.
var Priority = []Tier{TierCritical, TierHigh, TierMedium, TierLow}

var tierNames = map[Tier]string{
	TierLow:      "low",
	TierMedium:   "medium",
	TierHigh:     "high",
	TierCritical: "critical",
}

// ErrUnknownTier is returned by ParseTier for names outside the tier set.
var ErrUnknownTier = errors.New("unknown tier")

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Valid reports whether t is one of the four defined tiers.
func (t Tier) Valid() bool {
	_, ok := tierNames[t]
	return ok
}

// Urgent reports whether the tier warrants an out-of-band alert.
func (t Tier) Urgent() bool {
	return t >= TierHigh
}

// ParseTier converts a tier name (case-insensitive) to a Tier.
func ParseTier(s string) (Tier, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, n := range tierNames {
		if n == name {
			return t, nil
		}
	}
	return TierLow, fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, int(t))
	}
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Effect identifies the external capability an action refers to. The
// caller decides how to carry it out.
type Effect string

const (
	EffectDial               Effect = "dial"
	EffectOpenFacilityFinder Effect = "open_facility_finder"
)

// Action is a suggestion attached to an urgent response.
type Action struct {
	Label  string `json:"label" yaml:"label"`
	Effect Effect `json:"effect" yaml:"effect"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// Response is the canned reply selected for a message.
type Response struct {
	Message string   `json:"message"`
	Tier    Tier     `json:"tier"`
	Actions []Action `json:"actions,omitempty"`
	// Alert is the banner text raised alongside urgent responses.
	Alert string `json:"alert,omitempty"`
}

// Match is a classification together with the trigger that decided it.
// Trigger is empty when no lexicon entry matched and the fallback tier was used.
type Match struct {
	Tier    Tier   `json:"tier"`
	Trigger string `json:"trigger,omitempty"`
}

// Result bundles the classification and response for one message.
type Result struct {
	Match    Match    `json:"match"`
	Response Response `json:"response"`
}
