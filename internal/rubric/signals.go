package rubric

import (
	"regexp"
	"strconv"
	"strings"
)

// Signals are resume-wide facts detected once and fed into every bucket's
// bonus terms.
type Signals struct {
	SkillCount            int
	HasQuantifiedImpact   bool
	HasRelevantExperience bool
	YearsOfExperience     int
	YearsDetected         bool
}

// skillTerms is the flat list counted for the skill bonus. Distinct matches
// only; repeating "sql" five times scores once.
var skillTerms = []string{
	"python", "sql", "javascript", "java", "c++", "excel",
	"tableau", "power bi", "figma", "jira", "confluence", "notion",
	"google analytics", "mixpanel", "amplitude", "looker", "airtable",
}

var (
	quantifiedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d+(?:\.\d+)?\s*%`),
		regexp.MustCompile(`\$\s?\d`),
		regexp.MustCompile(`\b\d+(?:\.\d+)?x\b`),
		regexp.MustCompile(`\d+\+`),
	}
	yearsPattern = regexp.MustCompile(`(\d{1,2})\+?\s*(?:years?|yrs?)`)
)

var relevantExperienceTerms = []string{
	"product manager", "product management", "product intern",
	"associate product", "apm", "product owner", "program manager",
}

// DetectSignals scans normalized resume text for the scorer's bonus inputs.
func DetectSignals(text string) Signals {
	lower := strings.ToLower(text)

	var sig Signals
	for _, term := range skillTerms {
		if strings.Contains(lower, term) {
			sig.SkillCount++
		}
	}

	for _, pat := range quantifiedPatterns {
		if pat.MatchString(lower) {
			sig.HasQuantifiedImpact = true
			break
		}
	}

	for _, term := range relevantExperienceTerms {
		if strings.Contains(lower, term) {
			sig.HasRelevantExperience = true
			break
		}
	}

	// Take the largest "N years" mention as the experience estimate.
	for _, m := range yearsPattern.FindAllStringSubmatch(lower, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			sig.YearsDetected = true
			if n > sig.YearsOfExperience {
				sig.YearsOfExperience = n
			}
		}
	}

	return sig
}

// experienceMultiplier dampens the overall score when experience is missing
// (unproven) or heavy (likely overqualified for an associate role).
func experienceMultiplier(sig Signals) float64 {
	switch {
	case !sig.YearsDetected || sig.YearsOfExperience == 0:
		return 0.8
	case sig.YearsOfExperience <= 2:
		return 1.0
	case sig.YearsOfExperience <= 4:
		return 0.95
	default:
		return 0.9
	}
}
