package model

// ScoringMethod selects how a category's test sessions are scored.
// The set is closed; anything else is an editorial error and the scoring
// engine fails fast on it.
type ScoringMethod string

const (
	ScoringDefault ScoringMethod = "default" // correct/answered * 100
	ScoringCustom  ScoringMethod = "custom"  // sum of per-question weights
	ScoringUTBK    ScoringMethod = "utbk"    // difficulty-weighted, 1000-point scale
)

// swagger:model Category
type Category struct {
	BaseModel
	CategoryName  string        `gorm:"size:200;not null" json:"categoryName"`
	TimeLimit     int           `gorm:"default:60" json:"timeLimit"` // minutes
	ScoringMethod ScoringMethod `gorm:"size:20;default:'default'" json:"scoringMethod"`
	PassingScore  float64       `gorm:"default:0" json:"passingScore"`
	Questions     []Question    `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}
