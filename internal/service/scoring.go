package service

import (
	"fmt"
	"math"
	"otos_backend/internal/model"
)

// The scoring engine is pure: it takes plain values extracted from a session
// and returns a score, so it can be tested without a database and reused by
// both submit and administrative recalculation.

// scoredAnswer is one answered question reduced to its scoring inputs.
type scoredAnswer struct {
	QuestionID   uint
	CustomWeight float64
	Difficulty   float64
	Correct      bool
}

// scoringStrategy computes a category score from the answered questions.
// One implementation per scoring method; dispatch is a closed switch so an
// unrecognized method fails fast instead of silently defaulting.
type scoringStrategy interface {
	score(answers []scoredAnswer) float64
}

// defaultScoring: fraction correct among answered, on a 100-point scale.
// Unanswered questions are excluded from the denominator on purpose:
// partial completion is scored against what was attempted.
type defaultScoring struct{}

func (defaultScoring) score(answers []scoredAnswer) float64 {
	if len(answers) == 0 {
		return 0
	}
	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(answers)) * 100
}

// customScoring: sum of per-question weights over correct answers.
// No normalization; editors design the category to total 100.
type customScoring struct{}

func (customScoring) score(answers []scoredAnswer) float64 {
	total := 0.0
	for _, a := range answers {
		if a.Correct {
			total += a.CustomWeight
		}
	}
	return total
}

// utbkScoring: difficulty-weighted fraction on a 1000-point scale.
type utbkScoring struct{}

func (utbkScoring) score(answers []scoredAnswer) float64 {
	var correctSum, answeredSum float64
	for _, a := range answers {
		answeredSum += a.Difficulty
		if a.Correct {
			correctSum += a.Difficulty
		}
	}
	if answeredSum == 0 {
		return 0
	}
	return correctSum / answeredSum * 1000
}

func strategyFor(method model.ScoringMethod) (scoringStrategy, error) {
	switch method {
	case model.ScoringDefault:
		return defaultScoring{}, nil
	case model.ScoringCustom:
		return customScoring{}, nil
	case model.ScoringUTBK:
		return utbkScoring{}, nil
	default:
		return nil, fmt.Errorf("unrecognized scoring method %q", method)
	}
}

// scoreAnswers computes a non-package session score. Zero answers is not an
// error: it scores 0.
func scoreAnswers(method model.ScoringMethod, answers []scoredAnswer) (float64, error) {
	strategy, err := strategyFor(method)
	if err != nil {
		return 0, err
	}
	return round1(strategy.score(answers)), nil
}

// scorePackage aggregates a package session: each category contributes its
// fraction-correct of attempted questions scaled to that category's point
// budget. Categories with no answers still appear in the breakdown with
// zeroes.
func scorePackage(rows []model.TryoutPackageCategory, byCategory map[uint][]scoredAnswer) (float64, []model.CategoryBreakdown) {
	total := 0.0
	breakdown := make([]model.CategoryBreakdown, 0, len(rows))

	for _, row := range rows {
		entry := model.CategoryBreakdown{
			CategoryID: row.CategoryID,
			MaxScore:   row.MaxScore,
		}
		if row.Category != nil {
			entry.CategoryName = row.Category.CategoryName
		}

		answers := byCategory[row.CategoryID]
		if len(answers) > 0 {
			correct := 0
			for _, a := range answers {
				if a.Correct {
					correct++
				}
			}
			fraction := float64(correct) / float64(len(answers))
			contribution := fraction * row.MaxScore

			entry.CorrectCount = correct
			entry.TotalCount = len(answers)
			entry.Score = round1(contribution)
			entry.Percentage = round1(fraction * 100)
			total += contribution
		}

		breakdown = append(breakdown, entry)
	}

	return round1(total), breakdown
}

// round1 fixes the external rounding policy: one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
