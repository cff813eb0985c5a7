package service

import (
	"errors"
	"math"
	"otos_backend/internal/model"
	"otos_backend/internal/repository"
	"otos_backend/internal/util"

	"gorm.io/gorm"
)

type CategoryService struct {
	CategoryRepo *repository.CategoryRepository
}

func NewCategoryService(categoryRepo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{CategoryRepo: categoryRepo}
}

type CategoryRequest struct {
	CategoryName  string              `json:"categoryName" binding:"required"`
	TimeLimit     int                 `json:"timeLimit"`
	ScoringMethod model.ScoringMethod `json:"scoringMethod"`
	PassingScore  float64             `json:"passingScore"`
}

func (s *CategoryService) Create(req CategoryRequest) (*model.Category, error) {
	method := req.ScoringMethod
	if method == "" {
		method = model.ScoringDefault
	}
	if _, err := strategyFor(method); err != nil {
		return nil, err
	}

	category := &model.Category{
		CategoryName:  req.CategoryName,
		TimeLimit:     req.TimeLimit,
		ScoringMethod: method,
		PassingScore:  req.PassingScore,
	}
	if category.TimeLimit <= 0 {
		category.TimeLimit = 60
	}
	if err := s.CategoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) GetByID(id uint) (*model.Category, error) {
	category, err := s.CategoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) List(page, limit int) ([]model.Category, int64, error) {
	return s.CategoryRepo.List(page, limit)
}

func (s *CategoryService) Update(id uint, req CategoryRequest) (*model.Category, error) {
	category, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.ScoringMethod != "" {
		if _, err := strategyFor(req.ScoringMethod); err != nil {
			return nil, err
		}
		category.ScoringMethod = req.ScoringMethod
	}
	if req.CategoryName != "" {
		category.CategoryName = req.CategoryName
	}
	if req.TimeLimit > 0 {
		category.TimeLimit = req.TimeLimit
	}
	if req.PassingScore > 0 {
		category.PassingScore = req.PassingScore
	}

	if err := s.CategoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.CategoryRepo.Delete(id)
}

// WeightReport is the editor's completeness check for custom scoring: the
// category's weights should total 100.
type WeightReport struct {
	CategoryID    uint    `json:"categoryId"`
	QuestionCount int64   `json:"questionCount"`
	WeightSum     float64 `json:"weightSum"`
	Complete      bool    `json:"complete"`
}

func (s *CategoryService) WeightReport(id uint) (*WeightReport, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}

	count, err := s.CategoryRepo.CountQuestions(id)
	if err != nil {
		return nil, err
	}
	sum, err := s.CategoryRepo.CustomWeightSum(id)
	if err != nil {
		return nil, err
	}

	return &WeightReport{
		CategoryID:    id,
		QuestionCount: count,
		WeightSum:     sum,
		Complete:      math.Abs(sum-100.0) < 1e-6,
	}, nil
}
