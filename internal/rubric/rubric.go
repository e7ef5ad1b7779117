package rubric

// Category is one of the five fixed APM competency buckets.
type Category string

const (
	TechnicalFluency     Category = "Technical Fluency"
	ProductThinking      Category = "Product Thinking"
	CuriosityCreativity  Category = "Curiosity & Creativity"
	CommunicationClarity Category = "Communication Clarity"
	LeadershipTeamwork   Category = "Leadership & Teamwork"
)

// Categories lists the rubric buckets in canonical order. Tie-breaks for
// strengths and improvements follow this order.
var Categories = []Category{
	TechnicalFluency,
	ProductThinking,
	CuriosityCreativity,
	CommunicationClarity,
	LeadershipTeamwork,
}

// categoryWeights are the fixed overall-score weights. They sum to 1.0.
var categoryWeights = map[Category]float64{
	TechnicalFluency:     0.25,
	ProductThinking:      0.25,
	CuriosityCreativity:  0.20,
	CommunicationClarity: 0.15,
	LeadershipTeamwork:   0.15,
}

// categoryKeywords hold representative keywords and phrases per bucket,
// matched case-insensitively as substrings.
var categoryKeywords = map[Category][]string{
	TechnicalFluency: {
		"python", "sql", "javascript", "api", "data analysis",
		"machine learning", "git", "excel", "tableau", "cloud",
		"engineering", "technical",
	},
	ProductThinking: {
		"product roadmap", "user research", "a/b test", "metrics",
		"prioritization", "mvp", "customer", "market", "strategy",
		"requirements", "launch", "kpi",
	},
	CuriosityCreativity: {
		"side project", "hackathon", "prototype", "experiment",
		"self-taught", "founded", "built", "designed", "created",
		"initiative", "learned", "explored",
	},
	CommunicationClarity: {
		"presented", "wrote", "documentation", "stakeholder",
		"communicated", "published", "facilitated", "negotiated",
		"pitch", "storytelling", "reported", "summarized",
	},
	LeadershipTeamwork: {
		"led", "mentored", "managed", "cross-functional", "team",
		"collaborated", "coordinated", "organized", "coached",
		"delegated", "recruited", "volunteered",
	},
}

// CategoryScore is the scored result for one rubric bucket.
type CategoryScore struct {
	Category Category `json:"category"`
	Value    int      `json:"value"`
	Weight   float64  `json:"weight"`
	Advice   string   `json:"advice"`
	Tips     []string `json:"tips,omitempty"`
}

// Scorecard is the full rubric output for one resume.
type Scorecard struct {
	Overall      int             `json:"overall"`
	Categories   []CategoryScore `json:"categories"`
	Strengths    []Category      `json:"strengths"`
	Improvements []Category      `json:"improvements"`
}

const strengthAdvice = "This is a great strength. Lead with it in interviews and in your essay."

// categoryTips are fixed per-bucket improvement suggestions. The first tip
// doubles as the advice line for mid-range scores.
var categoryTips = map[Category][]string{
	TechnicalFluency: {
		"Name the tools and languages you have actually used, not just 'technical skills'.",
		"Describe one project where you queried data or shipped code yourself.",
		"Add a line about how you work with engineers day to day.",
	},
	ProductThinking: {
		"Frame at least one bullet around a user problem and the metric it moved.",
		"Mention any experience writing specs, PRDs, or prioritizing a backlog.",
		"Show you think in trade-offs: what you chose NOT to build and why.",
	},
	CuriosityCreativity: {
		"Include a side project, hackathon, or something you taught yourself.",
		"Show a moment you questioned an assumption and tried a different approach.",
		"List a topic you are learning right now and how.",
	},
	CommunicationClarity: {
		"Tighten bullets to one idea each, starting with an action verb.",
		"Mention an audience you presented to or a document others relied on.",
		"Cut jargon; a recruiter should understand every line on first read.",
	},
	LeadershipTeamwork: {
		"Quantify the teams you led or coordinated, even informal ones.",
		"Describe a conflict or blocker you moved a group past.",
		"Include cross-functional work: design, engineering, marketing, operations.",
	},
}

// Weight returns the fixed overall weight for a category.
func Weight(c Category) float64 {
	return categoryWeights[c]
}

// Tips returns the fixed tip list for a category.
func Tips(c Category) []string {
	return categoryTips[c]
}
