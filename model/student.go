package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Student is the student profile attached to a User identity.
type Student struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	Matricula       string         `gorm:"type:varchar(255)" json:"matricula"`
	CURP            string         `gorm:"type:varchar(255)" json:"curp"`
	RFC             string         `gorm:"type:varchar(255)" json:"rfc"`
	FechaNacimiento datatypes.Date `json:"fecha_nacimiento"`
	Edad            int            `json:"edad"`
	Telefono        string         `gorm:"type:varchar(255)" json:"telefono"`
	Ocupacion       string         `gorm:"type:varchar(255)" json:"ocupacion"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
