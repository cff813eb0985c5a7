package model

// swagger:model Question
type Question struct {
	BaseModel
	CategoryID   uint   `gorm:"index;not null" json:"categoryId"`
	QuestionText string `gorm:"type:text;not null" json:"questionText"`
	ImageURL     string `gorm:"size:255" json:"imageUrl,omitempty"`
	// CustomWeight is the points this question contributes under custom
	// scoring. Editors should make a category's weights sum to 100.
	CustomWeight float64 `gorm:"default:0" json:"customWeight"`
	// DifficultyCoefficient is used only by UTBK scoring and is rewritten
	// by recalibration; 1.0 until the question has been calibrated.
	DifficultyCoefficient float64  `gorm:"default:1" json:"difficultyCoefficient"`
	Choices               []Choice `gorm:"constraint:OnDelete:CASCADE" json:"choices,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Choice
type Choice struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	ChoiceText string `gorm:"type:text;not null" json:"choiceText"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
}

func (Choice) TableName() string {
	return "choices"
}
