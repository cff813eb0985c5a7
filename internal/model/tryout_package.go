package model

// swagger:model TryoutPackage
type TryoutPackage struct {
	BaseModel
	PackageName       string `gorm:"size:200;not null" json:"packageName"`
	Description       string `gorm:"type:text" json:"description"`
	TotalTime         int    `gorm:"default:180" json:"totalTime"` // minutes
	IsPublished       bool   `gorm:"default:false" json:"isPublished"`
	IsFreeForVisitors bool   `gorm:"default:false" json:"isFreeForVisitors"`

	Categories []TryoutPackageCategory `gorm:"foreignKey:TryoutPackageID;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
}

func (TryoutPackage) TableName() string {
	return "tryout_packages"
}

// TryoutPackageCategory pins how one category participates in a package:
// how many questions are drawn, how many of the package's 1000 points it
// may contribute, and its position in the exam.
//
// swagger:model TryoutPackageCategory
type TryoutPackageCategory struct {
	BaseModel
	TryoutPackageID uint      `gorm:"uniqueIndex:idx_package_category;not null" json:"tryoutPackageId"`
	CategoryID      uint      `gorm:"uniqueIndex:idx_package_category;not null" json:"categoryId"`
	QuestionCount   int       `gorm:"default:0" json:"questionCount"`
	MaxScore        float64   `gorm:"default:0" json:"maxScore"`
	Order           int       `gorm:"default:0" json:"order"`
	Category        *Category `json:"category,omitempty"`
}

func (TryoutPackageCategory) TableName() string {
	return "tryout_package_categories"
}

// PackageMaxTotal is the design total of a package's category budgets.
const PackageMaxTotal = 1000.0

// PackagePassingScore is the fixed pass mark for package sessions,
// distinct from per-category passing scores.
const PackagePassingScore = 600.0
