package model

import (
	"time"
)

type UserRole string

const (
	Admin    UserRole = "admin"
	Operator UserRole = "operator"
	Teacher  UserRole = "teacher"
	Student  UserRole = "student"
	Visitor  UserRole = "visitor"
)

// CanManageContent reports whether the role may edit categories, questions
// and packages. Admin implies every other capability.
func (r UserRole) CanManageContent() bool {
	return r == Admin || r == Operator || r == Teacher
}

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"size:20;default:'student'" json:"role"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen  time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
