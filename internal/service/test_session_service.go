package service

import (
	"encoding/json"
	"errors"
	"otos_backend/internal/model"
	"otos_backend/internal/repository"
	"otos_backend/internal/util"
	"otos_backend/pkg/monitoring"
	"sort"
	"time"

	"gorm.io/gorm"
)

// TestSessionService drives one candidate attempt through
// in-progress → submitted. Expiry is evaluated lazily: every operation on an
// in-progress session checks the clock first and force-submits when the
// limit has elapsed, so no timers exist.
type TestSessionService struct {
	SessionRepo  *repository.TestSessionRepository
	CategoryRepo *repository.CategoryRepository
	QuestionRepo *repository.QuestionRepository
	PackageRepo  *repository.PackageRepository
	PackageSvc   *PackageService
	DB           *gorm.DB

	now func() time.Time
}

func NewTestSessionService(
	sessionRepo *repository.TestSessionRepository,
	categoryRepo *repository.CategoryRepository,
	questionRepo *repository.QuestionRepository,
	packageRepo *repository.PackageRepository,
	packageSvc *PackageService,
	db *gorm.DB,
) *TestSessionService {
	return &TestSessionService{
		SessionRepo:  sessionRepo,
		CategoryRepo: categoryRepo,
		QuestionRepo: questionRepo,
		PackageRepo:  packageRepo,
		PackageSvc:   packageSvc,
		DB:           db,
		now:          time.Now,
	}
}

type StartTestRequest struct {
	CategoryIDs     []uint `json:"categoryIds"`
	TryoutPackageID *uint  `json:"tryoutPackageId"`
}

// SubmitResult is what a finished session reports back.
type SubmitResult struct {
	SessionID     uint                      `json:"sessionId"`
	Score         float64                   `json:"score"`
	Passed        bool                      `json:"passed"`
	Breakdown     []model.CategoryBreakdown `json:"breakdown,omitempty"`
	AutoSubmitted bool                      `json:"autoSubmitted"`
}

// AnswerResult acknowledges a recorded answer, or carries the final result
// when the session had already expired.
type AnswerResult struct {
	Position      int           `json:"position"`
	AutoSubmitted bool          `json:"autoSubmitted"`
	Final         *SubmitResult `json:"final,omitempty"`
}

// ResumeResult is the 1-based position of the first unanswered question,
// or the final result when the session expired in the meantime.
type ResumeResult struct {
	Position      int           `json:"position"`
	AutoSubmitted bool          `json:"autoSubmitted"`
	Final         *SubmitResult `json:"final,omitempty"`
}

// Start creates an in-progress session for either a category set or a
// tryout package. A second concurrent attempt on the same scope is rejected.
func (s *TestSessionService) Start(studentID uint, req StartTestRequest) (*model.TestSession, error) {
	session := &model.TestSession{
		StudentID:       studentID,
		StartTime:       s.now(),
		CurrentQuestion: 1,
	}

	switch {
	case req.TryoutPackageID != nil:
		pkg, err := s.PackageRepo.FindByID(*req.TryoutPackageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrPackageNotFound
			}
			return nil, err
		}
		if err := s.PackageSvc.CanBeTaken(pkg); err != nil {
			return nil, err
		}
		if _, err := s.SessionRepo.FindInProgressByPackage(studentID, pkg.ID); err == nil {
			return nil, util.ErrTestInProgress
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		session.TryoutPackageID = &pkg.ID
		session.TimeLimit = pkg.TotalTime

	case len(req.CategoryIDs) > 0:
		categories, err := s.CategoryRepo.FindByIDs(req.CategoryIDs)
		if err != nil {
			return nil, err
		}
		if len(categories) != len(req.CategoryIDs) {
			return nil, util.ErrCategoryNotFound
		}
		if _, err := s.SessionRepo.FindInProgressByCategories(studentID, req.CategoryIDs); err == nil {
			return nil, util.ErrTestInProgress
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		for _, c := range categories {
			session.TimeLimit += c.TimeLimit
		}
		session.Categories = categories

	default:
		return nil, util.ErrScopeRequired
	}

	if err := s.SessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// RecordAnswer upserts the (session, question) answer. On an expired session
// it force-submits instead and returns the final result.
func (s *TestSessionService) RecordAnswer(studentID, sessionID, questionID, choiceID uint) (*AnswerResult, error) {
	session, err := s.loadOwned(studentID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsSubmitted {
		return nil, util.ErrTestSubmitted
	}

	if session.IsTimeUp(s.now()) {
		final, err := s.finalize(session, true)
		if err != nil {
			return nil, err
		}
		return &AnswerResult{AutoSubmitted: true, Final: final}, nil
	}

	ordered, err := s.orderedQuestionIDs(session)
	if err != nil {
		return nil, err
	}
	if !containsID(ordered, questionID) {
		return nil, util.ErrQuestionNotInScope
	}

	choice, err := s.QuestionRepo.FindChoice(choiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChoiceNotInQuest
		}
		return nil, err
	}
	if choice.QuestionID != questionID {
		return nil, util.ErrChoiceNotInQuest
	}

	answer := &model.Answer{
		TestSessionID:    sessionID,
		QuestionID:       questionID,
		SelectedChoiceID: choiceID,
	}
	if err := s.SessionRepo.UpsertAnswer(s.DB, answer); err != nil {
		return nil, err
	}

	position, err := s.firstUnanswered(session, ordered)
	if err != nil {
		return nil, err
	}
	// The stored cursor is a display hint only; resume recomputes it.
	_ = s.SessionRepo.UpdateCursor(sessionID, position)

	return &AnswerResult{Position: position}, nil
}

// ResumePosition returns where an interrupted candidate should continue:
// the 1-based index of the first unanswered question (the last index when
// everything is answered).
func (s *TestSessionService) ResumePosition(studentID, sessionID uint) (*ResumeResult, error) {
	session, err := s.loadOwned(studentID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsSubmitted {
		return nil, util.ErrTestSubmitted
	}

	if session.IsTimeUp(s.now()) {
		final, err := s.finalize(session, true)
		if err != nil {
			return nil, err
		}
		return &ResumeResult{AutoSubmitted: true, Final: final}, nil
	}

	ordered, err := s.orderedQuestionIDs(session)
	if err != nil {
		return nil, err
	}
	position, err := s.firstUnanswered(session, ordered)
	if err != nil {
		return nil, err
	}
	return &ResumeResult{Position: position}, nil
}

// Submit finishes the session explicitly. Resubmitting is rejected, never
// silently recomputed.
func (s *TestSessionService) Submit(studentID, sessionID uint) (*SubmitResult, error) {
	session, err := s.loadOwned(studentID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsSubmitted {
		return nil, util.ErrTestSubmitted
	}
	return s.finalize(session, false)
}

// Recalculate re-runs the scoring engine against the session's current
// answers and weights without touching is_submitted or end_time.
// Administrative only.
func (s *TestSessionService) Recalculate(sessionID uint) (float64, error) {
	session, err := s.SessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, util.ErrTestNotFound
		}
		return 0, err
	}

	score, breakdown, err := s.computeScore(session)
	if err != nil {
		return 0, err
	}

	updates := map[string]interface{}{"score": score}
	if breakdown != nil {
		raw, err := json.Marshal(breakdown)
		if err != nil {
			return 0, err
		}
		updates["score_breakdown"] = raw
	}
	if err := s.DB.Model(&model.TestSession{}).Where("id = ?", sessionID).Updates(updates).Error; err != nil {
		return 0, err
	}
	return score, nil
}

// SessionResult is the detail view of one attempt.
type SessionResult struct {
	Session   *model.TestSession        `json:"session"`
	Breakdown []model.CategoryBreakdown `json:"breakdown,omitempty"`
	Passed    bool                      `json:"passed"`
	Answers   []model.Answer            `json:"answers"`
}

// GetResult returns a submitted session with its answers for review.
func (s *TestSessionService) GetResult(studentID, sessionID uint) (*SessionResult, error) {
	session, err := s.loadOwned(studentID, sessionID)
	if err != nil {
		return nil, err
	}

	answers, err := s.SessionRepo.ListAnswers(sessionID)
	if err != nil {
		return nil, err
	}

	result := &SessionResult{
		Session: session,
		Passed:  s.passed(session, session.Score),
		Answers: answers,
	}
	if len(session.ScoreBreakdown) > 0 {
		var breakdown []model.CategoryBreakdown
		if err := json.Unmarshal(session.ScoreBreakdown, &breakdown); err == nil {
			result.Breakdown = breakdown
		}
	}
	return result, nil
}

func (s *TestSessionService) ListByStudent(studentID uint, page, limit int) ([]model.TestSession, int64, error) {
	return s.SessionRepo.ListByStudent(studentID, page, limit)
}

// finalize transitions the session to submitted in a single transaction:
// end_time, is_submitted, score and breakdown become visible together. The
// guarded update makes concurrent submits collapse to exactly one; the loser
// observes the stored result (auto path) instead of recomputing.
func (s *TestSessionService) finalize(session *model.TestSession, auto bool) (*SubmitResult, error) {
	score, breakdown, err := s.computeScore(session)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if breakdown != nil {
		raw, err = json.Marshal(breakdown)
		if err != nil {
			return nil, err
		}
	}

	endTime := s.now()
	var alreadySubmitted bool
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"is_submitted": true,
			"end_time":     endTime,
			"score":        score,
		}
		if raw != nil {
			updates["score_breakdown"] = raw
		}
		res := tx.Model(&model.TestSession{}).
			Where("id = ? AND is_submitted = ?", session.ID, false).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		alreadySubmitted = res.RowsAffected == 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadySubmitted {
		kind := "manual"
		if auto {
			kind = "auto"
		}
		monitoring.TestSubmissions.WithLabelValues(kind).Inc()
	}

	if alreadySubmitted {
		// A concurrent request won the race; report what it stored.
		stored, err := s.SessionRepo.FindByID(session.ID)
		if err != nil {
			return nil, err
		}
		score = stored.Score
		breakdown = nil
		if len(stored.ScoreBreakdown) > 0 {
			_ = json.Unmarshal(stored.ScoreBreakdown, &breakdown)
		}
	}

	return &SubmitResult{
		SessionID:     session.ID,
		Score:         score,
		Passed:        s.passed(session, score),
		Breakdown:     breakdown,
		AutoSubmitted: auto,
	}, nil
}

// computeScore reduces the session's answers to scoring inputs and runs the
// engine: the package aggregator for package sessions, the category's
// strategy otherwise.
func (s *TestSessionService) computeScore(session *model.TestSession) (float64, []model.CategoryBreakdown, error) {
	answers, err := s.SessionRepo.ListAnswers(session.ID)
	if err != nil {
		return 0, nil, err
	}

	scored := make([]scoredAnswer, 0, len(answers))
	byCategory := make(map[uint][]scoredAnswer)
	for _, a := range answers {
		if a.Question == nil || a.SelectedChoice == nil {
			continue
		}
		sa := scoredAnswer{
			QuestionID:   a.QuestionID,
			CustomWeight: a.Question.CustomWeight,
			Difficulty:   a.Question.DifficultyCoefficient,
			Correct:      a.SelectedChoice.IsCorrect,
		}
		scored = append(scored, sa)
		byCategory[a.Question.CategoryID] = append(byCategory[a.Question.CategoryID], sa)
	}

	if session.TryoutPackageID != nil {
		if session.TryoutPackage == nil {
			return 0, nil, util.ErrPackageNotFound
		}
		total, breakdown := scorePackage(session.TryoutPackage.Categories, byCategory)
		return total, breakdown, nil
	}

	method, err := s.sessionScoringMethod(session)
	if err != nil {
		return 0, nil, err
	}
	score, err := scoreAnswers(method, scored)
	return score, nil, err
}

// sessionScoringMethod picks the scoring method of a non-package session:
// the first category's, in stable id order. Multi-category sessions always
// shared one global formula in practice.
func (s *TestSessionService) sessionScoringMethod(session *model.TestSession) (model.ScoringMethod, error) {
	if len(session.Categories) == 0 {
		return "", util.ErrCategoryNotFound
	}
	categories := make([]model.Category, len(session.Categories))
	copy(categories, session.Categories)
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories[0].ScoringMethod, nil
}

func (s *TestSessionService) passed(session *model.TestSession, score float64) bool {
	if session.TryoutPackageID != nil {
		return score >= model.PackagePassingScore
	}
	if len(session.Categories) > 0 {
		return score >= session.Categories[0].PassingScore
	}
	return false
}

// orderedQuestionIDs is the session's canonical question sequence: package
// categories in their join order (each truncated to its drawn question
// count), otherwise the category's questions in id order.
func (s *TestSessionService) orderedQuestionIDs(session *model.TestSession) ([]uint, error) {
	var ordered []uint

	if session.TryoutPackageID != nil {
		if session.TryoutPackage == nil {
			return nil, util.ErrPackageNotFound
		}
		for _, row := range session.TryoutPackage.Categories {
			questions, err := s.QuestionRepo.ListAllByCategory(row.CategoryID)
			if err != nil {
				return nil, err
			}
			drawn := len(questions)
			if row.QuestionCount > 0 && row.QuestionCount < drawn {
				drawn = row.QuestionCount
			}
			for _, q := range questions[:drawn] {
				ordered = append(ordered, q.ID)
			}
		}
		return ordered, nil
	}

	categories := make([]model.Category, len(session.Categories))
	copy(categories, session.Categories)
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	for _, c := range categories {
		questions, err := s.QuestionRepo.ListAllByCategory(c.ID)
		if err != nil {
			return nil, err
		}
		for _, q := range questions {
			ordered = append(ordered, q.ID)
		}
	}
	return ordered, nil
}

// firstUnanswered derives the resume position from Answers; the stored
// cursor is never trusted.
func (s *TestSessionService) firstUnanswered(session *model.TestSession, ordered []uint) (int, error) {
	answers, err := s.SessionRepo.ListAnswers(session.ID)
	if err != nil {
		return 0, err
	}
	answered := make(map[uint]bool, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = true
	}

	for i, id := range ordered {
		if !answered[id] {
			return i + 1, nil
		}
	}
	if len(ordered) == 0 {
		return 1, nil
	}
	return len(ordered), nil
}

func (s *TestSessionService) loadOwned(studentID, sessionID uint) (*model.TestSession, error) {
	session, err := s.SessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	if session.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	return session, nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
