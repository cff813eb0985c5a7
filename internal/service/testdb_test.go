package service

import (
	"testing"

	"otos_backend/internal/model"
	"otos_backend/internal/repository"
	"otos_backend/pkg/database"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB gives each test its own in-memory database with the full
// schema. A single connection keeps the memory database alive and shared.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("underlying db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db          *gorm.DB
	sessions    *TestSessionService
	packages    *PackageService
	calibration *CalibrationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)

	categoryRepo := repository.NewCategoryRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	sessionRepo := repository.NewTestSessionRepository(db)

	packages := NewPackageService(packageRepo, categoryRepo)
	return &testEnv{
		db:          db,
		sessions:    NewTestSessionService(sessionRepo, categoryRepo, questionRepo, packageRepo, packages, db),
		packages:    packages,
		calibration: NewCalibrationService(categoryRepo, questionRepo, db, zap.NewNop()),
	}
}

func createStudent(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Name: "Student " + email, Email: email, Password: "x", Role: model.Student}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	return user
}

func createCategory(t *testing.T, db *gorm.DB, name string, method model.ScoringMethod, timeLimit int) *model.Category {
	t.Helper()
	category := &model.Category{
		CategoryName:  name,
		TimeLimit:     timeLimit,
		ScoringMethod: method,
		PassingScore:  60,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

// createQuestion makes a question with three choices, the first being
// correct. Returns the question with choices loaded.
func createQuestion(t *testing.T, db *gorm.DB, categoryID uint, weight float64) *model.Question {
	t.Helper()
	question := &model.Question{
		CategoryID:            categoryID,
		QuestionText:          "q",
		CustomWeight:          weight,
		DifficultyCoefficient: 1,
		Choices: []model.Choice{
			{ChoiceText: "right", IsCorrect: true},
			{ChoiceText: "wrong a"},
			{ChoiceText: "wrong b"},
		},
	}
	if err := db.Create(question).Error; err != nil {
		t.Fatalf("create question: %v", err)
	}
	return question
}

func correctChoice(t *testing.T, q *model.Question) uint {
	t.Helper()
	for _, c := range q.Choices {
		if c.IsCorrect {
			return c.ID
		}
	}
	t.Fatal("question has no correct choice")
	return 0
}

func wrongChoice(t *testing.T, q *model.Question) uint {
	t.Helper()
	for _, c := range q.Choices {
		if !c.IsCorrect {
			return c.ID
		}
	}
	t.Fatal("question has no wrong choice")
	return 0
}
