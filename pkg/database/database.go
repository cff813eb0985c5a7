package database

import (
	"fmt"
	"log"
	"otos_backend/internal/config"
	"otos_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedDefaultCategories(db)

	return db, nil
}

// Migrate runs AutoMigrate for every model. Shared with the test setup.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Question{},
		&model.Choice{},
		&model.TryoutPackage{},
		&model.TryoutPackageCategory{},
		&model.TestSession{},
		&model.Answer{},
	)
}

// seedDefaultCategories creates the four standard UTBK subtests on an empty
// install so a fresh deployment is immediately usable.
func seedDefaultCategories(db *gorm.DB) {
	var count int64
	db.Model(&model.Category{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.Category{
		{CategoryName: "Tes Potensi Skolastik (TPS)", TimeLimit: 120, ScoringMethod: model.ScoringUTBK, PassingScore: 600},
		{CategoryName: "Literasi dalam Bahasa Indonesia", TimeLimit: 90, ScoringMethod: model.ScoringUTBK, PassingScore: 500},
		{CategoryName: "Literasi dalam Bahasa Inggris", TimeLimit: 90, ScoringMethod: model.ScoringUTBK, PassingScore: 500},
		{CategoryName: "Penalaran Matematika", TimeLimit: 90, ScoringMethod: model.ScoringUTBK, PassingScore: 550},
	}
	for _, c := range defaults {
		db.Create(&c)
	}
}
