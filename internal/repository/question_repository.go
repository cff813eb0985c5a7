package repository

import (
	"otos_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.Preload("Choices").First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) ListByCategory(categoryID uint, page, limit int) ([]model.Question, int64, error) {
	var qs []model.Question
	var total int64

	query := r.DB.Model(&model.Question{})
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Preload("Choices").Order("id asc").Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

// ListAllByCategory returns a category's questions in the stable order the
// session engine uses (by id).
func (r *QuestionRepository) ListAllByCategory(categoryID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Preload("Choices").Where("category_id = ?", categoryID).Order("id asc").Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) Update(question *model.Question) error {
	return r.DB.Save(question).Error
}

// ReplaceChoices swaps a question's choice set atomically.
func (r *QuestionRepository) ReplaceChoices(questionID uint, choices []model.Choice) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("question_id = ?", questionID).Delete(&model.Choice{}).Error; err != nil {
			return err
		}
		for i := range choices {
			choices[i].QuestionID = questionID
		}
		if len(choices) == 0 {
			return nil
		}
		return tx.Create(&choices).Error
	})
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Select("Choices").Delete(&model.Question{BaseModel: model.BaseModel{ID: id}}).Error
}

func (r *QuestionRepository) FindChoice(choiceID uint) (*model.Choice, error) {
	var c model.Choice
	err := r.DB.First(&c, choiceID).Error
	return &c, err
}

// QuestionAnswerStats aggregates historical answer correctness for one
// question, the input of difficulty recalibration.
type QuestionAnswerStats struct {
	QuestionID   uint
	TotalAnswers int64
	CorrectCount int64
}

// AnswerStatsByCategory returns per-question answer statistics for every
// question in the category that has at least one recorded answer.
func (r *QuestionRepository) AnswerStatsByCategory(tx *gorm.DB, categoryID uint) ([]QuestionAnswerStats, error) {
	var stats []QuestionAnswerStats
	err := tx.Model(&model.Answer{}).
		Select("answers.question_id AS question_id, COUNT(*) AS total_answers, SUM(CASE WHEN choices.is_correct THEN 1 ELSE 0 END) AS correct_count").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Joins("JOIN choices ON choices.id = answers.selected_choice_id").
		Where("questions.category_id = ?", categoryID).
		Group("answers.question_id").
		Scan(&stats).Error
	return stats, err
}

func (r *QuestionRepository) UpdateDifficultyCoefficient(tx *gorm.DB, questionID uint, coefficient float64) error {
	return tx.Model(&model.Question{}).Where("id = ?", questionID).
		Update("difficulty_coefficient", coefficient).Error
}
