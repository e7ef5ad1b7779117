package rubric

import (
	"math"
	"strings"
)

const (
	keywordTermMax = 60.0
	skillBonusMax  = 20.0
	skillBonusStep = 4.0
	impactBonus    = 15.0
	relevanceBonus = 10.0

	strengthThreshold    = 75
	improvementThreshold = 60
	adviceStrongAt       = 80

	maxStrengths    = 2
	maxImprovements = 2
)

// Scorer evaluates resume text against the fixed APM rubric. It is stateless
// and safe for concurrent use; construct one at startup and share it.
type Scorer struct{}

// NewScorer constructs a Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes the full Scorecard for the given extracted text. It is
// deterministic and never fails; degenerate input simply scores low.
func (s *Scorer) Score(text string) Scorecard {
	lower := strings.ToLower(text)
	sig := DetectSignals(text)

	card := Scorecard{
		Categories:   make([]CategoryScore, 0, len(Categories)),
		Strengths:    []Category{},
		Improvements: []Category{},
	}

	weighted := 0.0
	for _, cat := range Categories {
		value := scoreCategory(lower, cat, sig)
		card.Categories = append(card.Categories, CategoryScore{
			Category: cat,
			Value:    value,
			Weight:   Weight(cat),
			Advice:   adviceFor(cat, value),
			Tips:     tipsFor(cat, value),
		})
		weighted += float64(value) * Weight(cat)

		if value >= strengthThreshold && len(card.Strengths) < maxStrengths {
			card.Strengths = append(card.Strengths, cat)
		}
		if value < improvementThreshold && len(card.Improvements) < maxImprovements {
			card.Improvements = append(card.Improvements, cat)
		}
	}

	card.Overall = clampScore(weighted * experienceMultiplier(sig))
	return card
}

func scoreCategory(lower string, cat Category, sig Signals) int {
	keywords := categoryKeywords[cat]
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched++
		}
	}

	score := float64(matched) / float64(len(keywords)) * keywordTermMax

	if sig.SkillCount >= 1 {
		score += math.Min(skillBonusMax, float64(sig.SkillCount)*skillBonusStep)
	}
	if sig.HasQuantifiedImpact {
		score += impactBonus
	}
	if sig.HasRelevantExperience {
		score += relevanceBonus
	}

	return clampScore(score)
}

func adviceFor(cat Category, value int) string {
	switch {
	case value >= adviceStrongAt:
		return strengthAdvice
	default:
		return categoryTips[cat][0]
	}
}

// tipsFor returns the full tip list only for buckets that need work.
func tipsFor(cat Category, value int) []string {
	if value >= improvementThreshold {
		return nil
	}
	return append([]string(nil), categoryTips[cat]...)
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
