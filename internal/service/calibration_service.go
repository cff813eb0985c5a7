package service

import (
	"errors"
	"otos_backend/internal/model"
	"otos_backend/internal/repository"
	"otos_backend/internal/util"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CalibrationService recomputes difficulty coefficients for utbk categories
// from accumulated answer statistics. Questions nobody answered yet keep
// their current coefficient.
type CalibrationService struct {
	CategoryRepo *repository.CategoryRepository
	QuestionRepo *repository.QuestionRepository
	DB           *gorm.DB
	Logger       *zap.Logger
}

func NewCalibrationService(
	categoryRepo *repository.CategoryRepository,
	questionRepo *repository.QuestionRepository,
	db *gorm.DB,
	logger *zap.Logger,
) *CalibrationService {
	return &CalibrationService{
		CategoryRepo: categoryRepo,
		QuestionRepo: questionRepo,
		DB:           db,
		Logger:       logger,
	}
}

// CalibrationReport summarizes one category recalibration run.
type CalibrationReport struct {
	CategoryID uint   `json:"categoryId"`
	Category   string `json:"category"`
	Updated    int    `json:"updated"`
}

// questionDifficulty carries one question through the calibration pipeline.
type questionDifficulty struct {
	QuestionID  uint
	Raw         float64
	Coefficient float64
}

// RecalibrateCategory recomputes and persists the coefficients of every
// answered question in the category, all in one transaction so a concurrent
// submit reads either the old set or the new set.
func (s *CalibrationService) RecalibrateCategory(categoryID uint) (*CalibrationReport, error) {
	category, err := s.CategoryRepo.FindByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCategoryNotFound
		}
		return nil, err
	}

	report := &CalibrationReport{CategoryID: category.ID, Category: category.CategoryName}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		stats, err := s.QuestionRepo.AnswerStatsByCategory(tx, categoryID)
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			return nil
		}

		for _, qd := range computeCoefficients(stats) {
			if err := s.QuestionRepo.UpdateDifficultyCoefficient(tx, qd.QuestionID, qd.Coefficient); err != nil {
				return err
			}
			report.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("recalibrated difficulty coefficients",
		zap.Uint("categoryId", category.ID),
		zap.String("category", category.CategoryName),
		zap.Int("updated", report.Updated))
	return report, nil
}

// RecalibrateAllUTBK runs recalibration over every utbk-scored category.
// A failing category is logged and skipped so the rest still run.
func (s *CalibrationService) RecalibrateAllUTBK() ([]CalibrationReport, error) {
	categories, err := s.CategoryRepo.ListByScoringMethod(model.ScoringUTBK)
	if err != nil {
		return nil, err
	}

	reports := make([]CalibrationReport, 0, len(categories))
	for _, c := range categories {
		report, err := s.RecalibrateCategory(c.ID)
		if err != nil {
			s.Logger.Error("category recalibration failed",
				zap.Uint("categoryId", c.ID), zap.Error(err))
			continue
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

// computeCoefficients turns per-question answer statistics into normalized
// difficulty coefficients:
//
//  1. raw difficulty = 1 - success rate, so harder questions rank higher
//  2. rank questions by raw difficulty descending
//  3. interpolate provisional coefficients linearly from 1.5 (hardest)
//     down to 0.5 (easiest); a single question gets 1.0
//  4. scale the set so the coefficients sum to 1000
//
// Ties in raw difficulty break on question id to keep runs deterministic.
func computeCoefficients(stats []repository.QuestionAnswerStats) []questionDifficulty {
	qds := make([]questionDifficulty, 0, len(stats))
	for _, st := range stats {
		if st.TotalAnswers == 0 {
			continue
		}
		rate := float64(st.CorrectCount) / float64(st.TotalAnswers)
		qds = append(qds, questionDifficulty{QuestionID: st.QuestionID, Raw: 1 - rate})
	}
	if len(qds) == 0 {
		return nil
	}

	sort.Slice(qds, func(i, j int) bool {
		if qds[i].Raw != qds[j].Raw {
			return qds[i].Raw > qds[j].Raw
		}
		return qds[i].QuestionID < qds[j].QuestionID
	})

	n := len(qds)
	if n == 1 {
		qds[0].Coefficient = 1.0
		return qds
	}

	sum := 0.0
	for i := range qds {
		qds[i].Coefficient = 1.5 - float64(i)/float64(n-1)
		sum += qds[i].Coefficient
	}

	scale := 1000.0 / sum
	for i := range qds {
		qds[i].Coefficient *= scale
	}
	return qds
}
