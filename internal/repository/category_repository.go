package repository

import (
	"otos_backend/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

func (r *CategoryRepository) Create(category *model.Category) error {
	return r.DB.Create(category).Error
}

func (r *CategoryRepository) FindByID(id uint) (*model.Category, error) {
	var c model.Category
	err := r.DB.First(&c, id).Error
	return &c, err
}

func (r *CategoryRepository) FindByIDs(ids []uint) ([]model.Category, error) {
	var cs []model.Category
	err := r.DB.Where("id IN ?", ids).Find(&cs).Error
	return cs, err
}

func (r *CategoryRepository) List(page, limit int) ([]model.Category, int64, error) {
	var cs []model.Category
	var total int64

	query := r.DB.Model(&model.Category{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("category_name asc").Offset(offset).Limit(limit).Find(&cs).Error
	return cs, total, err
}

func (r *CategoryRepository) ListByScoringMethod(method model.ScoringMethod) ([]model.Category, error) {
	var cs []model.Category
	err := r.DB.Where("scoring_method = ?", method).Find(&cs).Error
	return cs, err
}

func (r *CategoryRepository) Update(category *model.Category) error {
	return r.DB.Save(category).Error
}

func (r *CategoryRepository) Delete(id uint) error {
	return r.DB.Select("Questions").Delete(&model.Category{BaseModel: model.BaseModel{ID: id}}).Error
}

func (r *CategoryRepository) CountQuestions(categoryID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

// CustomWeightSum returns the total custom weight of a category's questions,
// surfaced to editors as the completeness check against the 100-point design.
func (r *CategoryRepository) CustomWeightSum(categoryID uint) (float64, error) {
	var sum *float64
	err := r.DB.Model(&model.Question{}).
		Where("category_id = ?", categoryID).
		Select("SUM(custom_weight)").
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}
