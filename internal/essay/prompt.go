package essay

import (
	"fmt"
	"sort"
	"strings"

	"apmcoach-backend/internal/rubric"
)

// SystemInstruction is sent as the system role on every generation call.
const SystemInstruction = "You are an experienced product management career coach who writes " +
	"compelling, honest application essays for Associate Product Manager candidates."

const (
	// DefaultTargetWords is the essay length the prompt asks for.
	DefaultTargetWords = 400

	topCategoryCount = 3
	excerptMaxChars  = 1500
)

var promptRequirements = []string{
	"Write in the first person, as the candidate.",
	"Use flowing paragraphs only, no bullet points or headings.",
	"Ground every claim in the resume excerpt, never invent achievements.",
	"Do not repeat the same point in different words.",
	"Aim for a confident but humble tone.",
}

var hiringCriteria = []string{
	"Technical fluency: comfort with data, tooling, and working alongside engineers.",
	"Product thinking: user empathy, prioritization, and outcome-driven decisions.",
	"Curiosity and creativity: self-started projects, experiments, and novel ideas.",
	"Communication clarity: crisp writing and confident stakeholder presentations.",
	"Leadership and teamwork: influence without authority across functions.",
}

// PromptOptions control prompt construction for one generation call.
type PromptOptions struct {
	TargetWords int
	Regenerate  bool
	PriorEssay  string
}

// BuildPrompt assembles the full generation prompt. Sections are concatenated
// in a fixed order; the only computed parts are the score interpolation and
// the strongest-category list.
func BuildPrompt(card rubric.Scorecard, resumeText string, opts PromptOptions) string {
	target := opts.TargetWords
	if target <= 0 {
		target = DefaultTargetWords
	}

	var b strings.Builder

	b.WriteString(SystemInstruction)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Write an application essay of roughly %d words for an Associate Product Manager role, "+
		"explaining why this candidate is a strong fit.\n\n", target)

	b.WriteString("Requirements:\n")
	for _, req := range promptRequirements {
		b.WriteString("- ")
		b.WriteString(req)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("The hiring team evaluates candidates on these criteria:\n")
	for i, criterion := range hiringCriteria {
		fmt.Fprintf(&b, "%d. %s\n", i+1, criterion)
	}
	b.WriteString("\n")

	b.WriteString("The candidate's rubric scores:\n")
	for _, cs := range card.Categories {
		fmt.Fprintf(&b, "- %s: %d/100\n", cs.Category, cs.Value)
	}
	fmt.Fprintf(&b, "- Overall: %d/100\n\n", card.Overall)

	fmt.Fprintf(&b, "Lead with the candidate's strongest areas: %s.\n\n",
		strings.Join(TopCategories(card, topCategoryCount), ", "))

	b.WriteString("Resume excerpt:\n")
	b.WriteString(truncateExcerpt(resumeText, excerptMaxChars))
	b.WriteString("\n")

	if opts.Regenerate && strings.TrimSpace(opts.PriorEssay) != "" {
		b.WriteString("\nThe candidate already received the essay below. Write a fresh essay that does not " +
			"repeat its phrasing, structure, or opening. Previous essay:\n")
		b.WriteString(opts.PriorEssay)
		b.WriteString("\n")
	}

	return b.String()
}

// TopCategories returns up to n category names sorted by score descending.
// Ties keep the rubric's category order.
func TopCategories(card rubric.Scorecard, n int) []string {
	sorted := make([]rubric.CategoryScore, len(card.Categories))
	copy(sorted, card.Categories)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	names := make([]string, 0, n)
	for _, cs := range sorted[:n] {
		names = append(names, string(cs.Category))
	}
	return names
}

func truncateExcerpt(text string, maxChars int) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxChars {
		return text
	}
	return strings.TrimSpace(text[:maxChars])
}
