// Package categorizer suggests a spending category from free text and the
// recipient name using keyword scoring.
package categorizer

import (
	"regexp"
	"strings"

	"github.com/mlisboa17/assistente-pessoal/internal/config"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/normalize"
)

type matcher struct {
	category domain.Category
	words    []string
	patterns []*regexp.Regexp
}

// Categorizer scores categories by keyword hits. It is safe for concurrent
// use.
type Categorizer struct {
	matchers       []matcher
	divisor        float64
	recipientBonus int
}

// New compiles the keyword lists. Categories are evaluated in
// domain.CategoryPriority order so ties go to the earlier category.
func New(cfg config.Categorizer, keywords Keywords) *Categorizer {
	c := &Categorizer{divisor: cfg.ScoreDivisor, recipientBonus: cfg.RecipientBonus}
	if c.divisor <= 0 {
		c.divisor = 5.0
	}

	for _, cat := range domain.CategoryPriority {
		words, ok := keywords[cat]
		if !ok || len(words) == 0 {
			continue
		}
		m := matcher{category: cat}
		for _, w := range words {
			folded := normalize.Fold(w)
			if folded == "" {
				continue
			}
			m.words = append(m.words, folded)
			m.patterns = append(m.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(folded)+`\b`))
		}
		c.matchers = append(c.matchers, m)
	}
	return c
}

// Default uses the built-in keywords and scoring constants.
func Default() *Categorizer {
	return New(config.Default().Categorizer, DefaultKeywords())
}

// Suggest returns the best category. Each whole-word keyword occurrence in
// the free text scores one point. A category whose keyword appears anywhere
// in the recipient name, plural and compound forms included, adds the
// recipient bonus once. No hit at all yields "other" with zero confidence.
func (c *Categorizer) Suggest(freeText, recipient string) domain.CategorySuggestion {
	text := normalize.Fold(freeText)
	name := normalize.Fold(recipient)

	best := domain.CategoryOther
	bestScore := 0
	for _, m := range c.matchers {
		score := 0
		for _, p := range m.patterns {
			score += len(p.FindAllStringIndex(text, -1))
		}
		if name != "" && containsAny(name, m.words) {
			score += c.recipientBonus
		}
		if score > bestScore {
			best, bestScore = m.category, score
		}
	}

	if bestScore == 0 {
		return domain.CategorySuggestion{Category: domain.CategoryOther, Confidence: 0}
	}
	conf := float64(bestScore) / c.divisor
	if conf > 1 {
		conf = 1
	}
	return domain.CategorySuggestion{Category: best, Confidence: conf}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
