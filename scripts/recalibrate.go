// Manual difficulty recalibration trigger.
//
// The main application already runs this on a schedule (see the calibration
// section of the config). This script is for ad-hoc runs, for example after
// importing historical answer data.
//
// Usage:
//
//	go run scripts/recalibrate.go              # all utbk categories
//	go run scripts/recalibrate.go -category 3  # one category
package main

import (
	"flag"
	"log"

	"otos_backend/internal/config"
	"otos_backend/internal/repository"
	"otos_backend/internal/service"
	"otos_backend/pkg/database"
	"otos_backend/pkg/logger"
)

func main() {
	categoryID := flag.Uint("category", 0, "recalibrate only this category id")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	calibration := service.NewCalibrationService(
		repository.NewCategoryRepository(db),
		repository.NewQuestionRepository(db),
		db,
		logger.Log,
	)

	if *categoryID > 0 {
		report, err := calibration.RecalibrateCategory(*categoryID)
		if err != nil {
			log.Fatalf("recalibration failed: %v", err)
		}
		log.Printf("category %d (%s): %d coefficients updated", report.CategoryID, report.Category, report.Updated)
		return
	}

	reports, err := calibration.RecalibrateAllUTBK()
	if err != nil {
		log.Fatalf("recalibration failed: %v", err)
	}
	for _, r := range reports {
		log.Printf("category %d (%s): %d coefficients updated", r.CategoryID, r.Category, r.Updated)
	}
}
