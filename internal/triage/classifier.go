package triage

import "strings"

// Classifier assigns a tier to free text by substring search over a Lexicon.
//
// Matching is plain containment on folded text, without tokenizing or word
// boundaries, so "doravante" matches the medium trigger "dor". Tiers are
// tested most urgent first and the first hit wins, which keeps the result
// conservative when a message mixes phrases from several tiers.
type Classifier struct {
	folder Folder
	// folded holds each tier's triggers already folded, index-aligned with raw.
	folded map[Tier][]string
	raw    map[Tier][]string
}

// NewClassifier prepares a classifier for the lexicon. Triggers are folded
// once up front with the same Folder used on input.
func NewClassifier(lex *Lexicon, folder Folder) *Classifier {
	c := &Classifier{
		folder: folder,
		folded: make(map[Tier][]string),
		raw:    lex.Table(),
	}
	for tier, phrases := range c.raw {
		c.folded[tier] = folder.foldAll(phrases)
	}
	return c
}

// Classify returns the most urgent tier whose lexicon matches text, or
// TierLow when nothing matches. It never fails.
func (c *Classifier) Classify(text string) Tier {
	return c.Explain(text).Tier
}

// Explain is Classify plus the trigger phrase (as written in the lexicon)
// that decided the tier.
func (c *Classifier) Explain(text string) Match {
	folded := c.folder.Fold(text)
	if folded == "" {
		return Match{Tier: TierLow}
	}
	for _, tier := range Priority {
		for i, trigger := range c.folded[tier] {
			if strings.Contains(folded, trigger) {
				return Match{Tier: tier, Trigger: c.raw[tier][i]}
			}
		}
	}
	return Match{Tier: TierLow}
}
