package service

import (
	"math"
	"otos_backend/internal/model"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreAnswersDefault(t *testing.T) {
	tests := []struct {
		name    string
		answers []scoredAnswer
		want    float64
	}{
		{
			name: "two of three correct rounds to one decimal",
			answers: []scoredAnswer{
				{QuestionID: 1, Correct: true},
				{QuestionID: 2, Correct: true},
				{QuestionID: 3, Correct: false},
			},
			want: 66.7,
		},
		{
			name: "all correct",
			answers: []scoredAnswer{
				{QuestionID: 1, Correct: true},
				{QuestionID: 2, Correct: true},
			},
			want: 100,
		},
		{
			name:    "no answers scores zero",
			answers: nil,
			want:    0,
		},
		{
			name: "all wrong",
			answers: []scoredAnswer{
				{QuestionID: 1},
				{QuestionID: 2},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scoreAnswers(model.ScoringDefault, tt.answers)
			if err != nil {
				t.Fatalf("scoreAnswers: %v", err)
			}
			if !almostEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreAnswersCustom(t *testing.T) {
	answers := []scoredAnswer{
		{QuestionID: 1, CustomWeight: 30, Correct: true},
		{QuestionID: 2, CustomWeight: 20, Correct: true},
		{QuestionID: 3, CustomWeight: 50, Correct: false},
	}

	got, err := scoreAnswers(model.ScoringCustom, answers)
	if err != nil {
		t.Fatalf("scoreAnswers: %v", err)
	}
	if !almostEqual(got, 50) {
		t.Errorf("got %v, want 50", got)
	}
}

func TestScoreAnswersCustomIgnoresDifficulty(t *testing.T) {
	answers := []scoredAnswer{
		{QuestionID: 1, CustomWeight: 40, Difficulty: 99, Correct: true},
		{QuestionID: 2, CustomWeight: 10, Difficulty: 0.01, Correct: true},
	}

	got, err := scoreAnswers(model.ScoringCustom, answers)
	if err != nil {
		t.Fatalf("scoreAnswers: %v", err)
	}
	if !almostEqual(got, 50) {
		t.Errorf("got %v, want 50", got)
	}
}

func TestScoreAnswersUTBK(t *testing.T) {
	tests := []struct {
		name    string
		answers []scoredAnswer
		want    float64
	}{
		{
			name: "all correct scores full scale regardless of coefficients",
			answers: []scoredAnswer{
				{QuestionID: 1, Difficulty: 1.5, Correct: true},
				{QuestionID: 2, Difficulty: 0.5, Correct: true},
			},
			want: 1000,
		},
		{
			name: "hard question worth more than easy one",
			answers: []scoredAnswer{
				{QuestionID: 1, Difficulty: 3, Correct: true},
				{QuestionID: 2, Difficulty: 1, Correct: false},
			},
			want: 750,
		},
		{
			name: "all wrong",
			answers: []scoredAnswer{
				{QuestionID: 1, Difficulty: 2},
			},
			want: 0,
		},
		{
			name:    "no answers",
			answers: nil,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scoreAnswers(model.ScoringUTBK, tt.answers)
			if err != nil {
				t.Fatalf("scoreAnswers: %v", err)
			}
			if !almostEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreAnswersUnknownMethod(t *testing.T) {
	if _, err := scoreAnswers(model.ScoringMethod("weighted"), nil); err == nil {
		t.Fatal("expected error for unknown scoring method")
	}
}

func TestScorePackage(t *testing.T) {
	rows := []model.TryoutPackageCategory{
		{CategoryID: 1, MaxScore: 600, Category: &model.Category{CategoryName: "TPS"}},
		{CategoryID: 2, MaxScore: 400, Category: &model.Category{CategoryName: "Literasi"}},
	}
	byCategory := map[uint][]scoredAnswer{
		1: {
			{QuestionID: 1, Correct: true},
			{QuestionID: 2, Correct: false},
		},
		2: {
			{QuestionID: 3, Correct: true},
			{QuestionID: 4, Correct: false},
			{QuestionID: 5, Correct: false},
			{QuestionID: 6, Correct: false},
		},
	}

	total, breakdown := scorePackage(rows, byCategory)

	// 1/2 * 600 + 1/4 * 400 = 400
	if !almostEqual(total, 400) {
		t.Errorf("total = %v, want 400", total)
	}
	if len(breakdown) != 2 {
		t.Fatalf("breakdown entries = %d, want 2", len(breakdown))
	}
	if !almostEqual(breakdown[0].Score, 300) || breakdown[0].CorrectCount != 1 {
		t.Errorf("first entry = %+v, want score 300 with 1 correct", breakdown[0])
	}
	if !almostEqual(breakdown[1].Score, 100) || !almostEqual(breakdown[1].Percentage, 25) {
		t.Errorf("second entry = %+v, want score 100 at 25%%", breakdown[1])
	}
}

func TestScorePackageUnansweredCategory(t *testing.T) {
	rows := []model.TryoutPackageCategory{
		{CategoryID: 1, MaxScore: 500},
		{CategoryID: 2, MaxScore: 500},
	}
	byCategory := map[uint][]scoredAnswer{
		1: {{QuestionID: 1, Correct: true}},
	}

	total, breakdown := scorePackage(rows, byCategory)

	if !almostEqual(total, 500) {
		t.Errorf("total = %v, want 500", total)
	}
	if len(breakdown) != 2 {
		t.Fatalf("breakdown entries = %d, want 2", len(breakdown))
	}
	empty := breakdown[1]
	if empty.Score != 0 || empty.TotalCount != 0 || !almostEqual(empty.MaxScore, 500) {
		t.Errorf("unanswered category entry = %+v, want zeroed entry with max score", empty)
	}
}

func TestScorePackageRoundsOnceAtTheEnd(t *testing.T) {
	// Three categories each contributing 33.33...: summing rounded parts
	// would give 99.9, the total must round the exact sum instead.
	rows := []model.TryoutPackageCategory{
		{CategoryID: 1, MaxScore: 100.0 / 3},
		{CategoryID: 2, MaxScore: 100.0 / 3},
		{CategoryID: 3, MaxScore: 100.0 / 3},
	}
	byCategory := map[uint][]scoredAnswer{
		1: {{QuestionID: 1, Correct: true}},
		2: {{QuestionID: 2, Correct: true}},
		3: {{QuestionID: 3, Correct: true}},
	}

	total, _ := scorePackage(rows, byCategory)
	if !almostEqual(total, 100) {
		t.Errorf("total = %v, want 100", total)
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{66.666666, 66.7},
		{66.64, 66.6},
		{0, 0},
		{999.99, 1000},
	}
	for _, tt := range tests {
		if got := round1(tt.in); !almostEqual(got, tt.want) {
			t.Errorf("round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
