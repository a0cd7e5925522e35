package triage

import (
	"fmt"
	"strings"
)

// Lexicon maps each tier to its ordered trigger phrases. A Lexicon is
// immutable once built; accessors return copies.
type Lexicon struct {
	triggers map[Tier][]string
}

// NewLexicon validates and copies the given trigger table. Tiers may share
// triggers; classification order decides which one wins.
func NewLexicon(table map[Tier][]string) (*Lexicon, error) {
	l := &Lexicon{triggers: make(map[Tier][]string, len(table))}
	for tier, phrases := range table {
		if !tier.Valid() {
			return nil, fmt.Errorf("%w: lexicon tier %d", ErrInvalidPack, int(tier))
		}
		cp := make([]string, 0, len(phrases))
		for i, p := range phrases {
			if strings.TrimSpace(p) == "" {
				return nil, fmt.Errorf("%w: empty trigger %d in tier %s", ErrInvalidPack, i, tier)
			}
			cp = append(cp, p)
		}
		l.triggers[tier] = cp
	}
	return l, nil
}

// DefaultLexicon returns the Portuguese lexicon the service ships with.
func DefaultLexicon() *Lexicon {
	l, err := NewLexicon(defaultTriggers())
	if err != nil {
		panic(err)
	}
	return l
}

func defaultTriggers() map[Tier][]string {
	return map[Tier][]string{
		TierCritical: {"infarto", "derrame", "avc", "parada cardíaca", "não respira", "inconsciente", "sangramento grave"},
		TierHigh:     {"dor no peito", "falta de ar", "tontura", "vômito", "febre alta", "dor intensa"},
		TierMedium:   {"dor de cabeça", "náusea", "mal estar", "cansaço", "dor"},
		TierLow:      {"consulta", "medicamento", "dúvida", "informação"},
	}
}

// Triggers returns a copy of the phrases registered for tier.
func (l *Lexicon) Triggers(tier Tier) []string {
	src := l.triggers[tier]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Table returns a copy of the full trigger table.
func (l *Lexicon) Table() map[Tier][]string {
	out := make(map[Tier][]string, len(l.triggers))
	for tier := range l.triggers {
		out[tier] = l.Triggers(tier)
	}
	return out
}

// Len is the total number of triggers across all tiers.
func (l *Lexicon) Len() int {
	n := 0
	for _, p := range l.triggers {
		n += len(p)
	}
	return n
}
