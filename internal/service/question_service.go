package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"otos_backend/internal/model"
	"otos_backend/internal/repository"
	"otos_backend/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
	CategoryRepo *repository.CategoryRepository
	Storage      *StorageService
}

func NewQuestionService(
	questionRepo *repository.QuestionRepository,
	categoryRepo *repository.CategoryRepository,
	storage *StorageService,
) *QuestionService {
	return &QuestionService{
		QuestionRepo: questionRepo,
		CategoryRepo: categoryRepo,
		Storage:      storage,
	}
}

type ChoiceRequest struct {
	ChoiceText string `json:"choiceText" binding:"required"`
	IsCorrect  bool   `json:"isCorrect"`
}

type QuestionRequest struct {
	CategoryID   uint            `json:"categoryId" binding:"required"`
	QuestionText string          `json:"questionText" binding:"required"`
	CustomWeight float64         `json:"customWeight"`
	Choices      []ChoiceRequest `json:"choices" binding:"required,min=2"`
}

func (s *QuestionService) Create(req QuestionRequest) (*model.Question, error) {
	if _, err := s.CategoryRepo.FindByID(req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCategoryNotFound
		}
		return nil, err
	}
	if err := validateChoices(req.Choices); err != nil {
		return nil, err
	}

	question := &model.Question{
		CategoryID:            req.CategoryID,
		QuestionText:          req.QuestionText,
		CustomWeight:          req.CustomWeight,
		DifficultyCoefficient: 1.0,
	}
	for _, c := range req.Choices {
		question.Choices = append(question.Choices, model.Choice{
			ChoiceText: c.ChoiceText,
			IsCorrect:  c.IsCorrect,
		})
	}

	if err := s.QuestionRepo.Create(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *QuestionService) GetByID(id uint) (*model.Question, error) {
	question, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return question, nil
}

func (s *QuestionService) ListByCategory(categoryID uint, page, limit int) ([]model.Question, int64, error) {
	return s.QuestionRepo.ListByCategory(categoryID, page, limit)
}

func (s *QuestionService) Update(id uint, req QuestionRequest) (*model.Question, error) {
	question, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := validateChoices(req.Choices); err != nil {
		return nil, err
	}

	question.QuestionText = req.QuestionText
	question.CustomWeight = req.CustomWeight

	if err := s.QuestionRepo.Update(question); err != nil {
		return nil, err
	}

	choices := make([]model.Choice, 0, len(req.Choices))
	for _, c := range req.Choices {
		choices = append(choices, model.Choice{ChoiceText: c.ChoiceText, IsCorrect: c.IsCorrect})
	}
	if err := s.QuestionRepo.ReplaceChoices(id, choices); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *QuestionService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.QuestionRepo.Delete(id)
}

// AttachImage compresses an uploaded illustration and stores it next to the
// question. srcPath is a temp file written by the upload handler.
func (s *QuestionService) AttachImage(ctx context.Context, questionID uint, srcPath, originalName string) (*model.Question, error) {
	question, err := s.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedImageExt(ext) {
		return nil, fmt.Errorf("unsupported image type %q", ext)
	}

	compressed := srcPath + ".compressed" + ext
	if _, err := util.CompressImage(srcPath, compressed, 1280); err != nil {
		return nil, err
	}
	defer os.Remove(compressed)

	filename := fmt.Sprintf("questions/%d/%s%s", questionID, uuid.New().String(), ext)
	url, err := s.Storage.UploadFile(ctx, filename, compressed, "image/"+strings.TrimPrefix(ext, "."))
	if err != nil {
		return nil, err
	}

	question.ImageURL = url
	if err := s.QuestionRepo.Update(question); err != nil {
		return nil, err
	}
	return question, nil
}

func allowedImageExt(ext string) bool {
	for _, allowed := range util.AllowedImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func validateChoices(choices []ChoiceRequest) error {
	correct := 0
	for _, c := range choices {
		if c.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("a question must have exactly one correct choice, got %d", correct)
	}
	return nil
}
