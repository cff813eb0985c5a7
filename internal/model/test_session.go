package model

import (
	"encoding/json"
	"time"
)

// TestSession is one candidate's timed attempt at a category set or a
// tryout package. Expiry is a derived predicate, not a scheduled event:
// every read/write path checks IsTimeUp first.
//
// swagger:model TestSession
type TestSession struct {
	BaseModel
	StudentID uint       `gorm:"index;not null" json:"studentId"`
	Student   *User      `json:"student,omitempty"`
	Score     float64    `gorm:"default:0" json:"score"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	TimeLimit int        `gorm:"default:0" json:"timeLimit"` // minutes
	// CurrentQuestion is a 1-based cursor hint for the UI. Resume logic
	// always recomputes the real position from Answers.
	CurrentQuestion int  `gorm:"default:1" json:"currentQuestion"`
	IsSubmitted     bool `gorm:"default:false" json:"isSubmitted"`

	// Exactly one of TryoutPackageID / Categories is populated.
	TryoutPackageID *uint          `gorm:"index" json:"tryoutPackageId,omitempty"`
	TryoutPackage   *TryoutPackage `json:"tryoutPackage,omitempty"`
	Categories      []Category     `gorm:"many2many:test_session_categories" json:"categories,omitempty"`

	// ScoreBreakdown holds the persisted per-category breakdown of a
	// package session, JSON-encoded at submit time.
	ScoreBreakdown json.RawMessage `gorm:"type:json" json:"scoreBreakdown,omitempty"`

	Answers []Answer `gorm:"foreignKey:TestSessionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (TestSession) TableName() string {
	return "test_sessions"
}

// IsTimeUp reports whether the session's time limit has elapsed at now.
// Monotonic for a fixed session: start time and limit never change.
func (t *TestSession) IsTimeUp(now time.Time) bool {
	if t.TimeLimit <= 0 {
		return false
	}
	return now.Sub(t.StartTime) > time.Duration(t.TimeLimit)*time.Minute
}

// Answer records the selected choice for one question within one session.
// The unique index makes duplicate answers structurally impossible;
// RecordAnswer upserts on conflict.
//
// swagger:model Answer
type Answer struct {
	BaseModel
	TestSessionID    uint      `gorm:"uniqueIndex:idx_session_question;not null" json:"testSessionId"`
	QuestionID       uint      `gorm:"uniqueIndex:idx_session_question;not null" json:"questionId"`
	SelectedChoiceID uint      `gorm:"not null" json:"selectedChoiceId"`
	Question         *Question `json:"question,omitempty"`
	SelectedChoice   *Choice   `json:"selectedChoice,omitempty"`
}

func (Answer) TableName() string {
	return "answers"
}

// CategoryBreakdown is one entry of a package session's per-category result.
//
// swagger:model CategoryBreakdown
type CategoryBreakdown struct {
	CategoryID   uint    `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	CorrectCount int     `json:"correctCount"`
	TotalCount   int     `json:"totalCount"`
	MaxScore     float64 `json:"maxScore"`
	Score        float64 `json:"score"`
	Percentage   float64 `json:"percentage"`
}
