package rubric

import (
	"reflect"
	"testing"
)

const richResume = `Associate product manager with 2 years of experience.
Led a team of 5 engineers and collaborated cross-functional with design.
Built the product roadmap, ran user research and a/b test cycles, and
prioritized the mvp launch. Queried data with python and sql, presented
results in tableau dashboards, and wrote documentation for stakeholder
reviews. Grew activation 34% and saved $120k through experiment-driven
prioritization. Side project: a hackathon prototype I designed and created.`

const degenerateResume = `Lorem ipsum dolor sit amet, consectetur adipiscing
elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.
Quis ipsum suspendisse ultrices gravida dictum.`

func TestScoreIsDeterministic(t *testing.T) {
	s := NewScorer()
	first := s.Score(richResume)
	for i := 0; i < 5; i++ {
		if got := s.Score(richResume); !reflect.DeepEqual(got, first) {
			t.Fatalf("score %d diverged: %+v vs %+v", i, got, first)
		}
	}
}

func TestScoreBounds(t *testing.T) {
	s := NewScorer()
	for _, text := range []string{richResume, degenerateResume, ""} {
		card := s.Score(text)
		if card.Overall < 0 || card.Overall > 100 {
			t.Fatalf("overall out of range: %d", card.Overall)
		}
		if len(card.Categories) != len(Categories) {
			t.Fatalf("expected %d categories, got %d", len(Categories), len(card.Categories))
		}
		for _, cs := range card.Categories {
			if cs.Value < 0 || cs.Value > 100 {
				t.Fatalf("%s out of range: %d", cs.Category, cs.Value)
			}
			if cs.Advice == "" {
				t.Fatalf("%s missing advice", cs.Category)
			}
		}
	}
}

func TestStrengthsAndImprovementsDisjoint(t *testing.T) {
	s := NewScorer()
	for _, text := range []string{richResume, degenerateResume} {
		card := s.Score(text)
		if len(card.Strengths) > 2 || len(card.Improvements) > 2 {
			t.Fatalf("lists exceed 2: %v / %v", card.Strengths, card.Improvements)
		}
		for _, strength := range card.Strengths {
			for _, improvement := range card.Improvements {
				if strength == improvement {
					t.Fatalf("category %s is both strength and improvement", strength)
				}
			}
		}
	}
}

func TestKeywordRichResumeScoresWell(t *testing.T) {
	s := NewScorer()
	card := s.Score(richResume)

	values := map[Category]int{}
	for _, cs := range card.Categories {
		values[cs.Category] = cs.Value
	}

	if values[TechnicalFluency] == 0 {
		t.Fatal("expected non-zero Technical Fluency")
	}
	if values[LeadershipTeamwork] == 0 {
		t.Fatal("expected non-zero Leadership & Teamwork")
	}
	if card.Overall < 60 || card.Overall > 100 {
		t.Fatalf("expected overall in [60,100], got %d", card.Overall)
	}
}

func TestDegenerateResumeScoresLow(t *testing.T) {
	s := NewScorer()
	rich := s.Score(richResume)
	flat := s.Score(degenerateResume)

	if flat.Overall >= rich.Overall {
		t.Fatalf("expected degenerate overall %d below rich overall %d", flat.Overall, rich.Overall)
	}
	if len(flat.Improvements) != 2 {
		t.Fatalf("expected 2 improvements for degenerate text, got %d", len(flat.Improvements))
	}
	if len(flat.Strengths) != 0 {
		t.Fatalf("expected no strengths for degenerate text, got %v", flat.Strengths)
	}
}

func TestLowScoringCategoriesCarryFullTips(t *testing.T) {
	s := NewScorer()
	card := s.Score(degenerateResume)
	for _, cs := range card.Categories {
		if cs.Value < improvementThreshold && len(cs.Tips) != len(Tips(cs.Category)) {
			t.Fatalf("%s scored %d but carries %d tips", cs.Category, cs.Value, len(cs.Tips))
		}
	}
}

func TestDetectSignals(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, sig Signals)
	}{
		{
			name: "skills and impact",
			text: "Built dashboards in tableau and sql, grew revenue 20%",
			check: func(t *testing.T, sig Signals) {
				if sig.SkillCount != 2 {
					t.Fatalf("expected 2 skills, got %d", sig.SkillCount)
				}
				if !sig.HasQuantifiedImpact {
					t.Fatal("expected quantified impact")
				}
			},
		},
		{
			name: "years detected takes max",
			text: "1 year as analyst, then 3 years as product owner",
			check: func(t *testing.T, sig Signals) {
				if !sig.YearsDetected || sig.YearsOfExperience != 3 {
					t.Fatalf("expected 3 years, got %+v", sig)
				}
				if !sig.HasRelevantExperience {
					t.Fatal("expected relevant experience for product owner")
				}
			},
		},
		{
			name: "degenerate",
			text: "nothing to see here",
			check: func(t *testing.T, sig Signals) {
				if sig.SkillCount != 0 || sig.HasQuantifiedImpact || sig.YearsDetected {
					t.Fatalf("expected empty signals, got %+v", sig)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, DetectSignals(tt.text))
		})
	}
}

func TestExperienceMultiplierBranches(t *testing.T) {
	tests := []struct {
		name string
		sig  Signals
		want float64
	}{
		{name: "no years", sig: Signals{}, want: 0.8},
		{name: "one year", sig: Signals{YearsDetected: true, YearsOfExperience: 1}, want: 1.0},
		{name: "two years", sig: Signals{YearsDetected: true, YearsOfExperience: 2}, want: 1.0},
		{name: "three years", sig: Signals{YearsDetected: true, YearsOfExperience: 3}, want: 0.95},
		{name: "five plus", sig: Signals{YearsDetected: true, YearsOfExperience: 7}, want: 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := experienceMultiplier(tt.sig); got != tt.want {
				t.Fatalf("experienceMultiplier(%+v) = %v, want %v", tt.sig, got, tt.want)
			}
		})
	}
}
