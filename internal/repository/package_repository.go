package repository

import (
	"otos_backend/internal/model"

	"gorm.io/gorm"
)

type PackageRepository struct {
	DB *gorm.DB
}

func NewPackageRepository(db *gorm.DB) *PackageRepository {
	return &PackageRepository{DB: db}
}

func (r *PackageRepository) Create(pkg *model.TryoutPackage) error {
	return r.DB.Create(pkg).Error
}

func (r *PackageRepository) FindByID(id uint) (*model.TryoutPackage, error) {
	var p model.TryoutPackage
	err := r.DB.
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("tryout_package_categories.order asc")
		}).
		Preload("Categories.Category").
		First(&p, id).Error
	return &p, err
}

func (r *PackageRepository) List(page, limit int, publishedOnly bool) ([]model.TryoutPackage, int64, error) {
	var pkgs []model.TryoutPackage
	var total int64

	query := r.DB.Model(&model.TryoutPackage{})
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("tryout_package_categories.order asc")
		}).
		Preload("Categories.Category").
		Order("created_at desc").Offset(offset).Limit(limit).
		Find(&pkgs).Error
	return pkgs, total, err
}

func (r *PackageRepository) Update(pkg *model.TryoutPackage) error {
	return r.DB.Save(pkg).Error
}

// ReplaceCategories swaps a package's category allocation atomically.
func (r *PackageRepository) ReplaceCategories(packageID uint, rows []model.TryoutPackageCategory) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("tryout_package_id = ?", packageID).Delete(&model.TryoutPackageCategory{}).Error; err != nil {
			return err
		}
		for i := range rows {
			rows[i].TryoutPackageID = packageID
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (r *PackageRepository) Delete(id uint) error {
	return r.DB.Select("Categories").Delete(&model.TryoutPackage{BaseModel: model.BaseModel{ID: id}}).Error
}
