package model

import (
	"time"

	"gorm.io/gorm"
)

// Admin is the administrator profile attached to a User identity.
type Admin struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	ClaveAdmin string         `gorm:"type:varchar(255)" json:"clave_admin"`
	Telefono   string         `gorm:"type:varchar(255)" json:"telefono"`
	RFC        string         `gorm:"type:varchar(255)" json:"rfc"`
	Edad       int            `json:"edad"`
	Ocupacion  string         `gorm:"type:varchar(255)" json:"ocupacion"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
