package service

import (
	"errors"
	"math"

	"otos_backend/internal/model"
	"otos_backend/internal/repository"
	"otos_backend/internal/util"

	"gorm.io/gorm"
)

type PackageService struct {
	PackageRepo  *repository.PackageRepository
	CategoryRepo *repository.CategoryRepository
}

func NewPackageService(packageRepo *repository.PackageRepository, categoryRepo *repository.CategoryRepository) *PackageService {
	return &PackageService{PackageRepo: packageRepo, CategoryRepo: categoryRepo}
}

type PackageCategoryRequest struct {
	CategoryID    uint    `json:"categoryId" binding:"required"`
	QuestionCount int     `json:"questionCount"`
	MaxScore      float64 `json:"maxScore"`
	Order         int     `json:"order"`
}

type PackageRequest struct {
	PackageName       string                   `json:"packageName" binding:"required"`
	Description       string                   `json:"description"`
	TotalTime         int                      `json:"totalTime"`
	IsPublished       *bool                    `json:"isPublished"`
	IsFreeForVisitors *bool                    `json:"isFreeForVisitors"`
	Categories        []PackageCategoryRequest `json:"categories"`
}

func (s *PackageService) Create(req PackageRequest) (*model.TryoutPackage, error) {
	rows, err := s.buildCategoryRows(req.Categories)
	if err != nil {
		return nil, err
	}

	pkg := &model.TryoutPackage{
		PackageName: req.PackageName,
		Description: req.Description,
		TotalTime:   req.TotalTime,
		Categories:  rows,
	}
	if pkg.TotalTime <= 0 {
		pkg.TotalTime = 180
	}
	if req.IsPublished != nil {
		pkg.IsPublished = *req.IsPublished
	}
	if req.IsFreeForVisitors != nil {
		pkg.IsFreeForVisitors = *req.IsFreeForVisitors
	}

	if err := s.PackageRepo.Create(pkg); err != nil {
		return nil, err
	}
	return s.GetByID(pkg.ID)
}

func (s *PackageService) GetByID(id uint) (*model.TryoutPackage, error) {
	pkg, err := s.PackageRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPackageNotFound
		}
		return nil, err
	}
	return pkg, nil
}

func (s *PackageService) List(page, limit int, publishedOnly bool) ([]model.TryoutPackage, int64, error) {
	return s.PackageRepo.List(page, limit, publishedOnly)
}

func (s *PackageService) Update(id uint, req PackageRequest) (*model.TryoutPackage, error) {
	pkg, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.PackageName != "" {
		pkg.PackageName = req.PackageName
	}
	if req.Description != "" {
		pkg.Description = req.Description
	}
	if req.TotalTime > 0 {
		pkg.TotalTime = req.TotalTime
	}
	if req.IsPublished != nil {
		pkg.IsPublished = *req.IsPublished
	}
	if req.IsFreeForVisitors != nil {
		pkg.IsFreeForVisitors = *req.IsFreeForVisitors
	}

	// Save only the package row; the allocation is replaced separately.
	pkg.Categories = nil
	if err := s.PackageRepo.Update(pkg); err != nil {
		return nil, err
	}

	if req.Categories != nil {
		rows, err := s.buildCategoryRows(req.Categories)
		if err != nil {
			return nil, err
		}
		if err := s.PackageRepo.ReplaceCategories(id, rows); err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

func (s *PackageService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.PackageRepo.Delete(id)
}

// CanBeTaken gates session start: the package must be published, its
// category budgets must total exactly 1000, and every category must hold
// enough questions to draw from.
func (s *PackageService) CanBeTaken(pkg *model.TryoutPackage) error {
	if !pkg.IsPublished || len(pkg.Categories) == 0 {
		return util.ErrPackageNotReady
	}

	sum := 0.0
	for _, row := range pkg.Categories {
		sum += row.MaxScore

		available, err := s.CategoryRepo.CountQuestions(row.CategoryID)
		if err != nil {
			return err
		}
		if available == 0 || int64(row.QuestionCount) > available {
			return util.ErrPackageNotReady
		}
	}
	if math.Abs(sum-model.PackageMaxTotal) > 1e-6 {
		return util.ErrPackageNotReady
	}
	return nil
}

// AccessibleBy reports whether a role may start this package. Visitors only
// get packages explicitly marked free.
func (s *PackageService) AccessibleBy(pkg *model.TryoutPackage, role model.UserRole) bool {
	if role == model.Visitor {
		return pkg.IsFreeForVisitors
	}
	return true
}

func (s *PackageService) buildCategoryRows(reqs []PackageCategoryRequest) ([]model.TryoutPackageCategory, error) {
	rows := make([]model.TryoutPackageCategory, 0, len(reqs))
	for i, cr := range reqs {
		if _, err := s.CategoryRepo.FindByID(cr.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrCategoryNotFound
			}
			return nil, err
		}
		order := cr.Order
		if order == 0 {
			order = i + 1
		}
		rows = append(rows, model.TryoutPackageCategory{
			CategoryID:    cr.CategoryID,
			QuestionCount: cr.QuestionCount,
			MaxScore:      cr.MaxScore,
			Order:         order,
		})
	}
	return rows, nil
}
