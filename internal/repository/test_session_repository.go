package repository

import (
	"otos_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TestSessionRepository struct {
	DB *gorm.DB
}

func NewTestSessionRepository(db *gorm.DB) *TestSessionRepository {
	return &TestSessionRepository{DB: db}
}

func (r *TestSessionRepository) Create(session *model.TestSession) error {
	return r.DB.Create(session).Error
}

func (r *TestSessionRepository) FindByID(id uint) (*model.TestSession, error) {
	var s model.TestSession
	err := r.DB.
		Preload("Categories").
		Preload("TryoutPackage.Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("tryout_package_categories.order asc")
		}).
		Preload("TryoutPackage.Categories.Category").
		First(&s, id).Error
	return &s, err
}

// FindInProgressByPackage returns the student's unsubmitted session for a
// package, if any. Used as the duplicate-attempt guard.
func (r *TestSessionRepository) FindInProgressByPackage(studentID, packageID uint) (*model.TestSession, error) {
	var s model.TestSession
	err := r.DB.
		Where("student_id = ? AND tryout_package_id = ? AND is_submitted = ?", studentID, packageID, false).
		First(&s).Error
	return &s, err
}

// FindInProgressByCategories returns the student's unsubmitted non-package
// session whose category set intersects the given ids, if any.
func (r *TestSessionRepository) FindInProgressByCategories(studentID uint, categoryIDs []uint) (*model.TestSession, error) {
	var s model.TestSession
	err := r.DB.
		Joins("JOIN test_session_categories tsc ON tsc.test_session_id = test_sessions.id").
		Where("test_sessions.student_id = ? AND test_sessions.is_submitted = ? AND test_sessions.tryout_package_id IS NULL", studentID, false).
		Where("tsc.category_id IN ?", categoryIDs).
		First(&s).Error
	return &s, err
}

// UpsertAnswer inserts the answer or, when one already exists for the
// (session, question) pair, replaces its selected choice. The unique index
// on that pair makes this safe under concurrent retries.
func (r *TestSessionRepository) UpsertAnswer(tx *gorm.DB, answer *model.Answer) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "test_session_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_choice_id", "updated_at"}),
	}).Create(answer).Error
}

// ListAnswers returns a session's answers with question and choice loaded.
func (r *TestSessionRepository) ListAnswers(sessionID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.
		Preload("Question").
		Preload("SelectedChoice").
		Where("test_session_id = ?", sessionID).
		Order("question_id asc").
		Find(&answers).Error
	return answers, err
}

func (r *TestSessionRepository) UpdateCursor(sessionID uint, position int) error {
	return r.DB.Model(&model.TestSession{}).Where("id = ?", sessionID).
		Update("current_question", position).Error
}

func (r *TestSessionRepository) ListByStudent(studentID uint, page, limit int) ([]model.TestSession, int64, error) {
	var sessions []model.TestSession
	var total int64

	query := r.DB.Model(&model.TestSession{}).Where("student_id = ?", studentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.
		Preload("Categories").
		Preload("TryoutPackage").
		Order("created_at desc").Offset(offset).Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}
