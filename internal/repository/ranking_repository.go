package repository

import (
	"otos_backend/internal/model"

	"gorm.io/gorm"
)

// RankingRow is one aggregate leaderboard entry.
type RankingRow struct {
	StudentID  uint    `json:"studentId"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	TotalTests int64   `json:"totalTests"`
}

type RankingRepository struct {
	DB *gorm.DB
}

func NewRankingRepository(db *gorm.DB) *RankingRepository {
	return &RankingRepository{DB: db}
}

func (r *RankingRepository) submittedSessions() *gorm.DB {
	return r.DB.Table("test_sessions").
		Select("test_sessions.student_id AS student_id, users.name AS name").
		Joins("JOIN users ON users.id = test_sessions.student_id").
		Where("test_sessions.is_submitted = ?", true).
		Where("test_sessions.deleted_at IS NULL").
		Where("users.role = ?", model.Student)
}

// OverallAverage ranks students by mean score across all submitted sessions.
func (r *RankingRepository) OverallAverage(limit int) ([]RankingRow, error) {
	var rows []RankingRow
	err := r.submittedSessions().
		Select("test_sessions.student_id AS student_id, users.name AS name, AVG(test_sessions.score) AS score, COUNT(*) AS total_tests").
		Group("test_sessions.student_id, users.name").
		Order("score desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// CategoryBest ranks students by their best submitted score in one category.
func (r *RankingRepository) CategoryBest(categoryID uint, limit int) ([]RankingRow, error) {
	var rows []RankingRow
	err := r.submittedSessions().
		Select("test_sessions.student_id AS student_id, users.name AS name, MAX(test_sessions.score) AS score, COUNT(*) AS total_tests").
		Joins("JOIN test_session_categories tsc ON tsc.test_session_id = test_sessions.id").
		Where("tsc.category_id = ?", categoryID).
		Group("test_sessions.student_id, users.name").
		Order("score desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// CategoryAverage ranks students by mean submitted score in one category.
func (r *RankingRepository) CategoryAverage(categoryID uint, limit int) ([]RankingRow, error) {
	var rows []RankingRow
	err := r.submittedSessions().
		Select("test_sessions.student_id AS student_id, users.name AS name, AVG(test_sessions.score) AS score, COUNT(*) AS total_tests").
		Joins("JOIN test_session_categories tsc ON tsc.test_session_id = test_sessions.id").
		Where("tsc.category_id = ?", categoryID).
		Group("test_sessions.student_id, users.name").
		Order("score desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// PackageBest ranks students by their best submitted score for one package.
func (r *RankingRepository) PackageBest(packageID uint, limit int) ([]RankingRow, error) {
	var rows []RankingRow
	err := r.submittedSessions().
		Select("test_sessions.student_id AS student_id, users.name AS name, MAX(test_sessions.score) AS score, COUNT(*) AS total_tests").
		Where("test_sessions.tryout_package_id = ?", packageID).
		Group("test_sessions.student_id, users.name").
		Order("score desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
