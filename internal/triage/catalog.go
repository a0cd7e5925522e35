package triage

import (
	"fmt"
	"strings"
)

// Reply is one pre-authored response record.
type Reply struct {
	Message string   `yaml:"message"`
	Actions []Action `yaml:"actions,omitempty"`
}

// Rule selects Reply when the folded input contains the folded phrase.
type Rule struct {
	Contains string `yaml:"contains"`
	Reply    `yaml:",inline"`
}

// TierReplies is the decision table row for one tier. Rules are tried in
// order; Default answers when none match.
type TierReplies struct {
	Rules   []Rule `yaml:"rules,omitempty"`
	Default Reply  `yaml:"default"`
	Alert   string `yaml:"alert,omitempty"`
}

// Catalog is the response lookup table keyed by tier and input feature.
type Catalog struct {
	folder Folder
	rows   map[Tier]TierReplies
	// folded rule phrases, index-aligned with rows[tier].Rules.
	phrases map[Tier][]string
}

// NewCatalog validates rows and folds every rule phrase.
func NewCatalog(rows map[Tier]TierReplies, folder Folder) (*Catalog, error) {
	c := &Catalog{
		folder:  folder,
		rows:    make(map[Tier]TierReplies, len(rows)),
		phrases: make(map[Tier][]string, len(rows)),
	}
	for _, tier := range Priority {
		row, ok := rows[tier]
		if !ok {
			return nil, fmt.Errorf("%w: no responses for tier %s", ErrInvalidPack, tier)
		}
		if strings.TrimSpace(row.Default.Message) == "" {
			return nil, fmt.Errorf("%w: empty default response for tier %s", ErrInvalidPack, tier)
		}
		var phrases []string
		for i, r := range row.Rules {
			if strings.TrimSpace(r.Contains) == "" || strings.TrimSpace(r.Message) == "" {
				return nil, fmt.Errorf("%w: rule %d for tier %s needs contains and message", ErrInvalidPack, i, tier)
			}
			phrases = append(phrases, folder.Fold(r.Contains))
		}
		for _, r := range append([]Rule{{Reply: row.Default}}, row.Rules...) {
			for _, a := range r.Actions {
				if err := validateAction(a); err != nil {
					return nil, fmt.Errorf("tier %s: %w", tier, err)
				}
			}
		}
		c.rows[tier] = row
		c.phrases[tier] = phrases
	}
	return c, nil
}

func validateAction(a Action) error {
	if a.Label == "" {
		return fmt.Errorf("%w: action without label", ErrInvalidPack)
	}
	switch a.Effect {
	case EffectDial:
		if a.Target == "" {
			return fmt.Errorf("%w: dial action %q has no number", ErrInvalidPack, a.Label)
		}
	case EffectOpenFacilityFinder:
	default:
		return fmt.Errorf("%w: unknown effect %q", ErrInvalidPack, a.Effect)
	}
	return nil
}

// Respond picks the canned reply for text at the given tier. The tier is
// taken as given, so callers may respond at a tier other than the
// classified one.
func (c *Catalog) Respond(text string, tier Tier) Response {
	row, ok := c.rows[tier]
	if !ok {
		tier = TierLow
		row = c.rows[TierLow]
	}

	reply := row.Default
	folded := c.folder.Fold(text)
	for i, phrase := range c.phrases[tier] {
		if strings.Contains(folded, phrase) {
			reply = row.Rules[i].Reply
			break
		}
	}

	resp := Response{
		Message: reply.Message,
		Tier:    tier,
		Alert:   row.Alert,
	}
	if len(reply.Actions) > 0 {
		resp.Actions = make([]Action, len(reply.Actions))
		copy(resp.Actions, reply.Actions)
	}
	return resp
}
