package service

import (
	"errors"
	"testing"
	"time"

	"otos_backend/internal/model"
	"otos_backend/internal/util"
)

func startCategorySession(t *testing.T, env *testEnv, studentID uint, categoryIDs ...uint) *model.TestSession {
	t.Helper()
	session, err := env.sessions.Start(studentID, StartTestRequest{CategoryIDs: categoryIDs})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return session
}

func TestStartRequiresScope(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")

	if _, err := env.sessions.Start(student.ID, StartTestRequest{}); !errors.Is(err, util.ErrScopeRequired) {
		t.Fatalf("err = %v, want ErrScopeRequired", err)
	}
}

func TestStartRejectsDuplicateAttempt(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")
	category := createCategory(t, env.db, "TPS", model.ScoringDefault, 60)
	createQuestion(t, env.db, category.ID, 0)

	startCategorySession(t, env, student.ID, category.ID)

	if _, err := env.sessions.Start(student.ID, StartTestRequest{CategoryIDs: []uint{category.ID}}); !errors.Is(err, util.ErrTestInProgress) {
		t.Fatalf("err = %v, want ErrTestInProgress", err)
	}

	// Another student is unaffected.
	other := createStudent(t, env.db, "b@test.id")
	if _, err := env.sessions.Start(other.ID, StartTestRequest{CategoryIDs: []uint{category.ID}}); err != nil {
		t.Fatalf("other student blocked: %v", err)
	}
}

func TestStartAllowedAfterSubmit(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")
	category := createCategory(t, env.db, "TPS", model.ScoringDefault, 60)
	createQuestion(t, env.db, category.ID, 0)

	session := startCategorySession(t, env, student.ID, category.ID)
	if _, err := env.sessions.Submit(student.ID, session.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := env.sessions.Start(student.ID, StartTestRequest{CategoryIDs: []uint{category.ID}}); err != nil {
		t.Fatalf("restart after submit: %v", err)
	}
}

func TestStartSumsCategoryTimeLimits(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")
	c1 := createCategory(t, env.db, "TPS", model.ScoringDefault, 60)
	c2 := createCategory(t, env.db, "Literasi", model.ScoringDefault, 45)

	session := startCategorySession(t, env, student.ID, c1.ID, c2.ID)
	if session.TimeLimit != 105 {
		t.Errorf("time limit = %d, want 105", session.TimeLimit)
	}
}

func TestRecordAnswerUpsertsLatestChoice(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")
	category := createCategory(t, env.db, "TPS", model.ScoringDefault, 60)
	q := createQuestion(t, env.db, category.ID, 0)

	session := startCategorySession(t, env, student.ID, category.ID)

	if _, err := env.sessions.RecordAnswer(student.ID, session.ID, q.ID, wrongChoice(t, q)); err != nil {
		t.Fatalf("first answer: %v", err)
	}
	if _, err := env.sessions.RecordAnswer(student.ID, session.ID, q.ID, correctChoice(t, q)); err != nil {
		t.Fatalf("revised answer: %v", err)
	}

	var count int64
	env.db.Model(&model.Answer{}).Where("test_session_id = ?", session.ID).Count(&count)
	if count != 1 {
		t.Fatalf("answer rows = %d, want 1 after revision", count)
	}

	result, err := env.sessions.Submit(student.ID, session.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 100 {
		t.Errorf("score = %v, want 100 (latest choice counts)", result.Score)
	}
}

func TestRecordAnswerValidatesScope(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")
	category := createCategory(t, env.db, "TPS", model.ScoringDefault, 60)
	other := createCategory(t, env.db, "Other", model.ScoringDefault, 60)
	inScope := createQuestion(t, env.db, category.ID, 0)
	outOfScope := createQuestion(t, env.db, other.ID, 0)

	session := startCategorySession(t, env, student.ID, category.ID)

	if _, err := env.sessions.RecordAnswer(student.ID, session.ID, outOfScope.ID, correctChoice(t, outOfScope)); !errors.Is(err, util.ErrQuestionNotInScope) {
		t.Errorf("err = %v, want ErrQuestionNotInScope", err)
	}
	if _, err := env.sessions.RecordAnswer(student.ID, session.ID, inScope.ID, correctChoice(t, outOfScope)); !errors.Is(err, util.ErrChoiceNotInQuest) {
		t.Errorf("err = %v, want ErrChoiceNotInQuest", err)
	}
}

func TestRecordAnswerOwnership(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")
	intruder := createStudent(t, env.db, "b@test.id")
	category := createCategory(t, env.db, "TPS", model.ScoringDefault, 60)
	q := createQuestion(t, env.db, category.ID, 0)

	session := startCategorySession(t, env, student.ID, category.ID)

	if _, err := env.sessions.RecordAnswer(intruder.ID, session.ID, q.ID, correctChoice(t, q)); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestSubmitIsFinal(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")
	category := createCategory(t, env.db, "TPS", model.ScoringDefault, 60)
	q1 := createQuestion(t, env.db, category.ID, 0)
	q2 := createQuestion(t, env.db, category.ID, 0)
	q3 := createQuestion(t, env.db, category.ID, 0)

	session := startCategorySession(t, env, student.ID, category.ID)
	env.sessions.RecordAnswer(student.ID, session.ID, q1.ID, correctChoice(t, q1))
	env.sessions.RecordAnswer(student.ID, session.ID, q2.ID, correctChoice(t, q2))
	env.sessions.RecordAnswer(student.ID, session.ID, q3.ID, wrongChoice(t, q3))

	result, err := env.sessions.Submit(student.ID, session.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 66.7 {
		t.Errorf("score = %v, want 66.7", result.Score)
	}

	stored, err := env.sessions.SessionRepo.FindByID(session.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !stored.IsSubmitted || stored.EndTime == nil || stored.Score != 66.7 {
		t.Errorf("stored session = submitted %v, end %v, score %v; want all set together", stored.IsSubmitted, stored.EndTime, stored.Score)
	}

	// Explicit resubmission is rejected, and the recorded answers are frozen.
	if _, err := env.sessions.Submit(student.ID, session.ID); !errors.Is(err, util.ErrTestSubmitted) {
		t.Errorf("resubmit err = %v, want ErrTestSubmitted", err)
	}
	if _, err := env.sessions.RecordAnswer(student.ID, session.ID, q3.ID, correctChoice(t, q3)); !errors.Is(err, util.ErrTestSubmitted) {
		t.Errorf("answer after submit err = %v, want ErrTestSubmitted", err)
	}
}

func TestExpiredSessionAutoSubmitsOnAnswer(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")
	category := createCategory(t, env.db, "TPS", model.ScoringDefault, 30)
	q1 := createQuestion(t, env.db, category.ID, 0)
	q2 := createQuestion(t, env.db, category.ID, 0)

	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	env.sessions.now = func() time.Time { return now }

	session := startCategorySession(t, env, student.ID, category.ID)
	if _, err := env.sessions.RecordAnswer(student.ID, session.ID, q1.ID, correctChoice(t, q1)); err != nil {
		t.Fatalf("answer within limit: %v", err)
	}

	// Past the 30-minute limit the answer is not recorded; the session is
	// force-submitted with what exists.
	now = now.Add(31 * time.Minute)
	result, err := env.sessions.RecordAnswer(student.ID, session.ID, q2.ID, correctChoice(t, q2))
	if err != nil {
		t.Fatalf("answer after limit: %v", err)
	}
	if !result.AutoSubmitted || result.Final == nil {
		t.Fatalf("result = %+v, want auto-submitted with final score", result)
	}
	if !result.Final.AutoSubmitted || result.Final.Score != 100 {
		t.Errorf("final = %+v, want auto-submitted score 100 from the single recorded answer", result.Final)
	}

	stored, _ := env.sessions.SessionRepo.FindByID(session.ID)
	if !stored.IsSubmitted {
		t.Error("session not persisted as submitted")
	}

	var count int64
	env.db.Model(&model.Answer{}).Where("test_session_id = ?", session.ID).Count(&count)
	if count != 1 {
		t.Errorf("answer rows = %d, want 1 (late answer dropped)", count)
	}
}

func TestExpiredSessionAutoSubmitsOnResume(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")
	category := createCategory(t, env.db, "TPS", model.ScoringDefault, 30)
	createQuestion(t, env.db, category.ID, 0)

	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	env.sessions.now = func() time.Time { return now }

	session := startCategorySession(t, env, student.ID, category.ID)

	now = now.Add(time.Hour)
	result, err := env.sessions.ResumePosition(student.ID, session.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !result.AutoSubmitted || result.Final == nil || result.Final.Score != 0 {
		t.Errorf("result = %+v, want auto-submit scoring 0 with no answers", result)
	}
}

func TestResumePositionIsFirstUnanswered(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")
	category := createCategory(t, env.db, "TPS", model.ScoringDefault, 60)
	q1 := createQuestion(t, env.db, category.ID, 0)
	createQuestion(t, env.db, category.ID, 0) // q2, left unanswered
	q3 := createQuestion(t, env.db, category.ID, 0)

	session := startCategorySession(t, env, student.ID, category.ID)
	env.sessions.RecordAnswer(student.ID, session.ID, q1.ID, correctChoice(t, q1))
	env.sessions.RecordAnswer(student.ID, session.ID, q3.ID, correctChoice(t, q3))

	result, err := env.sessions.ResumePosition(student.ID, session.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if result.Position != 2 {
		t.Errorf("position = %d, want 2 (first gap, not the stored cursor)", result.Position)
	}
}

func TestResumePositionAllAnswered(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")
	category := createCategory(t, env.db, "TPS", model.ScoringDefault, 60)
	q1 := createQuestion(t, env.db, category.ID, 0)
	q2 := createQuestion(t, env.db, category.ID, 0)

	session := startCategorySession(t, env, student.ID, category.ID)
	env.sessions.RecordAnswer(student.ID, session.ID, q1.ID, correctChoice(t, q1))
	env.sessions.RecordAnswer(student.ID, session.ID, q2.ID, correctChoice(t, q2))

	result, err := env.sessions.ResumePosition(student.ID, session.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if result.Position != 2 {
		t.Errorf("position = %d, want last index when everything is answered", result.Position)
	}
}

func TestCustomScoringSession(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")
	category := createCategory(t, env.db, "Custom", model.ScoringCustom, 60)
	q1 := createQuestion(t, env.db, category.ID, 30)
	q2 := createQuestion(t, env.db, category.ID, 20)
	q3 := createQuestion(t, env.db, category.ID, 50)

	session := startCategorySession(t, env, student.ID, category.ID)
	env.sessions.RecordAnswer(student.ID, session.ID, q1.ID, correctChoice(t, q1))
	env.sessions.RecordAnswer(student.ID, session.ID, q2.ID, correctChoice(t, q2))
	env.sessions.RecordAnswer(student.ID, session.ID, q3.ID, wrongChoice(t, q3))

	result, err := env.sessions.Submit(student.ID, session.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 50 {
		t.Errorf("score = %v, want 50 (30+20)", result.Score)
	}
}

func TestRecalculateAfterWeightChange(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")
	category := createCategory(t, env.db, "Custom", model.ScoringCustom, 60)
	q := createQuestion(t, env.db, category.ID, 40)

	session := startCategorySession(t, env, student.ID, category.ID)
	env.sessions.RecordAnswer(student.ID, session.ID, q.ID, correctChoice(t, q))
	if _, err := env.sessions.Submit(student.ID, session.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	env.db.Model(&model.Question{}).Where("id = ?", q.ID).Update("custom_weight", 70)

	score, err := env.sessions.Recalculate(session.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if score != 70 {
		t.Errorf("score = %v, want 70 after weight change", score)
	}

	stored, _ := env.sessions.SessionRepo.FindByID(session.ID)
	if !stored.IsSubmitted || stored.Score != 70 {
		t.Errorf("stored = submitted %v score %v, want submitted with score 70", stored.IsSubmitted, stored.Score)
	}
}

func TestPackageSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")

	tps := createCategory(t, env.db, "TPS", model.ScoringUTBK, 120)
	lit := createCategory(t, env.db, "Literasi", model.ScoringUTBK, 90)
	tpsQ1 := createQuestion(t, env.db, tps.ID, 0)
	tpsQ2 := createQuestion(t, env.db, tps.ID, 0)
	litQ1 := createQuestion(t, env.db, lit.ID, 0)
	litQ2 := createQuestion(t, env.db, lit.ID, 0)
	litQ3 := createQuestion(t, env.db, lit.ID, 0)
	litQ4 := createQuestion(t, env.db, lit.ID, 0)

	published := true
	pkg, err := env.packages.Create(PackageRequest{
		PackageName: "UTBK Simulation",
		TotalTime:   180,
		IsPublished: &published,
		Categories: []PackageCategoryRequest{
			{CategoryID: tps.ID, QuestionCount: 2, MaxScore: 600, Order: 1},
			{CategoryID: lit.ID, QuestionCount: 4, MaxScore: 400, Order: 2},
		},
	})
	if err != nil {
		t.Fatalf("create package: %v", err)
	}

	session, err := env.sessions.Start(student.ID, StartTestRequest{TryoutPackageID: &pkg.ID})
	if err != nil {
		t.Fatalf("start package session: %v", err)
	}
	if session.TimeLimit != 180 {
		t.Errorf("time limit = %d, want package total 180", session.TimeLimit)
	}

	// TPS: 1 of 2 correct. Literasi: 1 of 4 correct.
	env.sessions.RecordAnswer(student.ID, session.ID, tpsQ1.ID, correctChoice(t, tpsQ1))
	env.sessions.RecordAnswer(student.ID, session.ID, tpsQ2.ID, wrongChoice(t, tpsQ2))
	env.sessions.RecordAnswer(student.ID, session.ID, litQ1.ID, correctChoice(t, litQ1))
	env.sessions.RecordAnswer(student.ID, session.ID, litQ2.ID, wrongChoice(t, litQ2))
	env.sessions.RecordAnswer(student.ID, session.ID, litQ3.ID, wrongChoice(t, litQ3))
	env.sessions.RecordAnswer(student.ID, session.ID, litQ4.ID, wrongChoice(t, litQ4))

	result, err := env.sessions.Submit(student.ID, session.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	// 1/2*600 + 1/4*400 = 400
	if result.Score != 400 {
		t.Errorf("score = %v, want 400", result.Score)
	}
	if result.Passed {
		t.Error("passed = true, want false below the 600 package mark")
	}
	if len(result.Breakdown) != 2 {
		t.Fatalf("breakdown entries = %d, want 2", len(result.Breakdown))
	}
	if result.Breakdown[0].CategoryID != tps.ID || result.Breakdown[0].Score != 300 {
		t.Errorf("first breakdown = %+v, want TPS at 300", result.Breakdown[0])
	}

	// The breakdown survives a reload.
	review, err := env.sessions.GetResult(student.ID, session.ID)
	if err != nil {
		t.Fatalf("get result: %v", err)
	}
	if len(review.Breakdown) != 2 || review.Breakdown[1].Score != 100 {
		t.Errorf("stored breakdown = %+v, want persisted per-category scores", review.Breakdown)
	}
}

func TestUTBKScoringUsesCoefficients(t *testing.T) {
	env := newTestEnv(t)
	student := createStudent(t, env.db, "a@test.id")
	category := createCategory(t, env.db, "TPS", model.ScoringUTBK, 60)
	hard := createQuestion(t, env.db, category.ID, 0)
	easy := createQuestion(t, env.db, category.ID, 0)

	env.db.Model(&model.Question{}).Where("id = ?", hard.ID).Update("difficulty_coefficient", 3)
	env.db.Model(&model.Question{}).Where("id = ?", easy.ID).Update("difficulty_coefficient", 1)

	session := startCategorySession(t, env, student.ID, category.ID)
	env.sessions.RecordAnswer(student.ID, session.ID, hard.ID, correctChoice(t, hard))
	env.sessions.RecordAnswer(student.ID, session.ID, easy.ID, wrongChoice(t, easy))

	result, err := env.sessions.Submit(student.ID, session.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 750 {
		t.Errorf("score = %v, want 750 (3/4 of the coefficient mass)", result.Score)
	}
}
