package essay

import (
	"fmt"
	"sort"
	"strings"

	"apmcoach-backend/internal/rubric"
)

// Lead-in per rank position, strongest category first.
var fallbackLeadIns = []string{
	"My strongest foundation is %s, where my background scored %d out of 100.",
	"Close behind is %s, at %d.",
	"I have also invested real effort in %s, reflected in a score of %d.",
	"In %s, scored at %d, I see solid ground to keep building on.",
	"Finally, %s, at %d, is the area I am working on most deliberately.",
}

var fallbackBodies = map[rubric.Category]string{
	rubric.TechnicalFluency: "I am comfortable sitting with engineers, reading a schema, and pulling my own " +
		"numbers instead of waiting for a report. That fluency means technical constraints become design " +
		"inputs for me rather than surprises, and it lets me earn the trust of the people who will actually " +
		"build what we decide to build together.",
	rubric.ProductThinking: "I start from the user's problem, write down what success would look like, and " +
		"only then argue about solutions. I have learned to cut scope without cutting the point of a " +
		"feature, and to treat a roadmap as a set of bets whose results we measure honestly once they ship.",
	rubric.CuriosityCreativity: "The projects I am proudest of were never assigned to me. I prototype ideas " +
		"on weekends, take apart products I admire to see why they work, and bring those experiments back " +
		"to my team as concrete proposals instead of vague inspiration.",
	rubric.CommunicationClarity: "I write the document before the meeting, keep it short, and make the " +
		"recommendation explicit. Whether the audience is an executive or a new teammate, I try to leave " +
		"every conversation with the decision, the owner, and the next step written down where everyone " +
		"can see them.",
	rubric.LeadershipTeamwork: "I have led by being useful first. Coordinating people who do not report to " +
		"me taught me to trade authority for clarity, to give credit loudly, and to surface disagreement " +
		"early while it is still cheap to resolve.",
}

const fallbackOpening = "Over the past several years I have been building toward product management from " +
	"every direction available to me, and the pattern across my background is consistent: I find problems " +
	"worth solving, gather the evidence, and rally people around a solution. My overall readiness score of " +
	"%d out of 100 reflects a foundation I constructed deliberately rather than stumbled into, and the " +
	"shape of that score tells you where I will contribute first."

const fallbackClosing = "An Associate Product Manager role rewards exactly this combination: enough " +
	"technical depth to be credible, enough user empathy to be right, and enough humility to keep " +
	"learning in public. I know where my gaps are, I have a track record of closing them, and I would " +
	"rather be measured on outcomes than on polish."

// FallbackEssay renders a deterministic essay from the scorecard alone. It is
// used when every generation provider fails, so it must always succeed.
func FallbackEssay(card rubric.Scorecard) string {
	sorted := make([]rubric.CategoryScore, len(card.Categories))
	copy(sorted, card.Categories)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	paragraphs := make([]string, 0, len(sorted)+2)
	paragraphs = append(paragraphs, fmt.Sprintf(fallbackOpening, card.Overall))

	for i, cs := range sorted {
		leadIn := fallbackLeadIns[len(fallbackLeadIns)-1]
		if i < len(fallbackLeadIns) {
			leadIn = fallbackLeadIns[i]
		}
		paragraph := fmt.Sprintf(leadIn, strings.ToLower(string(cs.Category)), cs.Value)
		if body, ok := fallbackBodies[cs.Category]; ok {
			paragraph += " " + body
		}
		paragraphs = append(paragraphs, paragraph)
	}

	paragraphs = append(paragraphs, fallbackClosing)

	return strings.Join(paragraphs, "\n\n")
}
