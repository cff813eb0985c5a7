package service

import (
	"errors"
	"testing"

	"otos_backend/internal/model"
	"otos_backend/internal/util"
)

func TestCanBeTakenRequiresPublication(t *testing.T) {
	env := newTestEnv(t)
	category := createCategory(t, env.db, "TPS", model.ScoringUTBK, 120)
	createQuestion(t, env.db, category.ID, 0)

	pkg, err := env.packages.Create(PackageRequest{
		PackageName: "Draft",
		Categories: []PackageCategoryRequest{
			{CategoryID: category.ID, QuestionCount: 1, MaxScore: 1000},
		},
	})
	if err != nil {
		t.Fatalf("create package: %v", err)
	}

	if err := env.packages.CanBeTaken(pkg); !errors.Is(err, util.ErrPackageNotReady) {
		t.Fatalf("err = %v, want ErrPackageNotReady for unpublished package", err)
	}
}

func TestCanBeTakenRequiresExactBudget(t *testing.T) {
	env := newTestEnv(t)
	category := createCategory(t, env.db, "TPS", model.ScoringUTBK, 120)
	createQuestion(t, env.db, category.ID, 0)

	published := true
	pkg, err := env.packages.Create(PackageRequest{
		PackageName: "Short budget",
		IsPublished: &published,
		Categories: []PackageCategoryRequest{
			{CategoryID: category.ID, QuestionCount: 1, MaxScore: 900},
		},
	})
	if err != nil {
		t.Fatalf("create package: %v", err)
	}

	if err := env.packages.CanBeTaken(pkg); !errors.Is(err, util.ErrPackageNotReady) {
		t.Fatalf("err = %v, want ErrPackageNotReady when budgets sum to 900", err)
	}
}

func TestCanBeTakenRequiresEnoughQuestions(t *testing.T) {
	env := newTestEnv(t)
	category := createCategory(t, env.db, "TPS", model.ScoringUTBK, 120)
	createQuestion(t, env.db, category.ID, 0)

	published := true
	pkg, err := env.packages.Create(PackageRequest{
		PackageName: "Overdrawn",
		IsPublished: &published,
		Categories: []PackageCategoryRequest{
			{CategoryID: category.ID, QuestionCount: 5, MaxScore: 1000},
		},
	})
	if err != nil {
		t.Fatalf("create package: %v", err)
	}

	if err := env.packages.CanBeTaken(pkg); !errors.Is(err, util.ErrPackageNotReady) {
		t.Fatalf("err = %v, want ErrPackageNotReady when the draw exceeds the pool", err)
	}
}

func TestCanBeTakenAcceptsCompletePackage(t *testing.T) {
	env := newTestEnv(t)
	c1 := createCategory(t, env.db, "TPS", model.ScoringUTBK, 120)
	c2 := createCategory(t, env.db, "Literasi", model.ScoringUTBK, 90)
	createQuestion(t, env.db, c1.ID, 0)
	createQuestion(t, env.db, c2.ID, 0)

	published := true
	pkg, err := env.packages.Create(PackageRequest{
		PackageName: "Complete",
		IsPublished: &published,
		Categories: []PackageCategoryRequest{
			{CategoryID: c1.ID, QuestionCount: 1, MaxScore: 600, Order: 1},
			{CategoryID: c2.ID, QuestionCount: 1, MaxScore: 400, Order: 2},
		},
	})
	if err != nil {
		t.Fatalf("create package: %v", err)
	}

	if err := env.packages.CanBeTaken(pkg); err != nil {
		t.Fatalf("CanBeTaken = %v, want nil", err)
	}
}

func TestCreatePackageUnknownCategory(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.packages.Create(PackageRequest{
		PackageName: "Bad",
		Categories: []PackageCategoryRequest{
			{CategoryID: 999, QuestionCount: 1, MaxScore: 1000},
		},
	})
	if !errors.Is(err, util.ErrCategoryNotFound) {
		t.Fatalf("err = %v, want ErrCategoryNotFound", err)
	}
}

func TestAccessibleByVisitor(t *testing.T) {
	env := newTestEnv(t)

	free := &model.TryoutPackage{IsFreeForVisitors: true}
	paid := &model.TryoutPackage{}

	if !env.packages.AccessibleBy(free, model.Visitor) {
		t.Error("visitor denied a free package")
	}
	if env.packages.AccessibleBy(paid, model.Visitor) {
		t.Error("visitor allowed a non-free package")
	}
	if !env.packages.AccessibleBy(paid, model.Student) {
		t.Error("student denied a package")
	}
}
