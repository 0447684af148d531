package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Teacher is the teacher profile attached to a User identity. Materias holds
// the subject names the teacher declared on registration (jsonb list).
type Teacher struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	UserID            uint           `gorm:"not null;index" json:"user_id"`
	IDTrabajador      string         `gorm:"type:varchar(255)" json:"id_trabajador"`
	FechaNacimiento   datatypes.Date `json:"fecha_nacimiento"`
	Telefono          string         `gorm:"type:varchar(255)" json:"telefono"`
	RFC               string         `gorm:"type:varchar(255)" json:"rfc"`
	Cubiculo          string         `gorm:"type:varchar(255)" json:"cubiculo"`
	Edad              int            `json:"edad"`
	AreaInvestigacion string         `gorm:"type:varchar(255)" json:"area_investigacion"`
	Materias          datatypes.JSON `gorm:"type:jsonb" json:"materias_json"`

	// Relationships
	User    User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Courses []Course `gorm:"foreignKey:ProfesorAsignadoID" json:"courses,omitempty"`
}
