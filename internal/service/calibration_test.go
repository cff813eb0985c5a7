package service

import (
	"errors"
	"math"
	"testing"

	"otos_backend/internal/model"
	"otos_backend/internal/repository"
	"otos_backend/internal/util"
)

func TestComputeCoefficientsSumTo1000(t *testing.T) {
	stats := []repository.QuestionAnswerStats{
		{QuestionID: 1, TotalAnswers: 10, CorrectCount: 9}, // easy
		{QuestionID: 2, TotalAnswers: 10, CorrectCount: 5},
		{QuestionID: 3, TotalAnswers: 10, CorrectCount: 1}, // hard
		{QuestionID: 4, TotalAnswers: 20, CorrectCount: 10},
	}

	qds := computeCoefficients(stats)
	if len(qds) != 4 {
		t.Fatalf("got %d coefficients, want 4", len(qds))
	}

	sum := 0.0
	for _, qd := range qds {
		if qd.Coefficient <= 0 {
			t.Errorf("question %d has non-positive coefficient %v", qd.QuestionID, qd.Coefficient)
		}
		sum += qd.Coefficient
	}
	if math.Abs(sum-1000) > 1e-6 {
		t.Errorf("coefficient sum = %v, want 1000", sum)
	}
}

func TestComputeCoefficientsOrdering(t *testing.T) {
	stats := []repository.QuestionAnswerStats{
		{QuestionID: 1, TotalAnswers: 10, CorrectCount: 9},
		{QuestionID: 2, TotalAnswers: 10, CorrectCount: 1},
		{QuestionID: 3, TotalAnswers: 10, CorrectCount: 5},
	}

	qds := computeCoefficients(stats)

	// Hardest first, and coefficients strictly decreasing down the ranking.
	if qds[0].QuestionID != 2 || qds[2].QuestionID != 1 {
		t.Fatalf("ranking order = %v, want hardest (2) first and easiest (1) last", []uint{qds[0].QuestionID, qds[1].QuestionID, qds[2].QuestionID})
	}
	for i := 1; i < len(qds); i++ {
		if qds[i].Coefficient >= qds[i-1].Coefficient {
			t.Errorf("coefficient at rank %d (%v) not below rank %d (%v)", i, qds[i].Coefficient, i-1, qds[i-1].Coefficient)
		}
	}

	// Before scaling the range is 1.5..0.5, so the hardest ends up with
	// three times the easiest's weight.
	ratio := qds[0].Coefficient / qds[2].Coefficient
	if math.Abs(ratio-3) > 1e-9 {
		t.Errorf("hardest/easiest ratio = %v, want 3", ratio)
	}
}

func TestComputeCoefficientsSingleQuestion(t *testing.T) {
	stats := []repository.QuestionAnswerStats{
		{QuestionID: 7, TotalAnswers: 4, CorrectCount: 1},
	}

	qds := computeCoefficients(stats)
	if len(qds) != 1 {
		t.Fatalf("got %d coefficients, want 1", len(qds))
	}
	if qds[0].Coefficient != 1.0 {
		t.Errorf("single question coefficient = %v, want 1.0", qds[0].Coefficient)
	}
}

func TestComputeCoefficientsSkipsUnanswered(t *testing.T) {
	stats := []repository.QuestionAnswerStats{
		{QuestionID: 1, TotalAnswers: 0, CorrectCount: 0},
		{QuestionID: 2, TotalAnswers: 5, CorrectCount: 2},
	}

	qds := computeCoefficients(stats)
	if len(qds) != 1 || qds[0].QuestionID != 2 {
		t.Fatalf("got %v, want only question 2", qds)
	}
}

func TestComputeCoefficientsTieBreaksOnID(t *testing.T) {
	stats := []repository.QuestionAnswerStats{
		{QuestionID: 9, TotalAnswers: 10, CorrectCount: 5},
		{QuestionID: 3, TotalAnswers: 10, CorrectCount: 5},
	}

	qds := computeCoefficients(stats)
	if qds[0].QuestionID != 3 {
		t.Errorf("tied difficulties should rank by id, got %d first", qds[0].QuestionID)
	}
}

func TestComputeCoefficientsEmpty(t *testing.T) {
	if qds := computeCoefficients(nil); qds != nil {
		t.Errorf("got %v, want nil", qds)
	}
}

func TestRecalibrateCategoryPersistsCoefficients(t *testing.T) {
	env := newTestEnv(t)
	category := createCategory(t, env.db, "TPS", model.ScoringUTBK, 120)
	easy := createQuestion(t, env.db, category.ID, 0)
	hard := createQuestion(t, env.db, category.ID, 0)
	unanswered := createQuestion(t, env.db, category.ID, 0)

	// Two students answered: easy solved by both, hard by neither.
	for i, email := range []string{"a@test.id", "b@test.id"} {
		student := createStudent(t, env.db, email)
		session := &model.TestSession{StudentID: student.ID, IsSubmitted: true}
		if err := env.db.Create(session).Error; err != nil {
			t.Fatalf("create session %d: %v", i, err)
		}
		answers := []model.Answer{
			{TestSessionID: session.ID, QuestionID: easy.ID, SelectedChoiceID: correctChoice(t, easy)},
			{TestSessionID: session.ID, QuestionID: hard.ID, SelectedChoiceID: wrongChoice(t, hard)},
		}
		if err := env.db.Create(&answers).Error; err != nil {
			t.Fatalf("create answers %d: %v", i, err)
		}
	}

	report, err := env.calibration.RecalibrateCategory(category.ID)
	if err != nil {
		t.Fatalf("recalibrate: %v", err)
	}
	if report.Updated != 2 {
		t.Fatalf("updated = %d, want 2 answered questions", report.Updated)
	}

	var got []model.Question
	if err := env.db.Order("id asc").Find(&got, []uint{easy.ID, hard.ID, unanswered.ID}).Error; err != nil {
		t.Fatalf("reload questions: %v", err)
	}

	sum := got[0].DifficultyCoefficient + got[1].DifficultyCoefficient
	if math.Abs(sum-1000) > 1e-6 {
		t.Errorf("answered coefficients sum = %v, want 1000", sum)
	}
	if got[1].DifficultyCoefficient <= got[0].DifficultyCoefficient {
		t.Errorf("hard coefficient %v not above easy %v", got[1].DifficultyCoefficient, got[0].DifficultyCoefficient)
	}
	if got[2].DifficultyCoefficient != 1 {
		t.Errorf("unanswered question coefficient = %v, want untouched 1", got[2].DifficultyCoefficient)
	}
}

func TestRecalibrateCategoryNotFound(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.calibration.RecalibrateCategory(42); !errors.Is(err, util.ErrCategoryNotFound) {
		t.Fatalf("err = %v, want ErrCategoryNotFound", err)
	}
}
