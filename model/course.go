package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course is a scheduled course section (materia). The NRC uniqueness is
// enforced both by the validator pre-check and by the database unique index;
// the index is the authoritative guard under concurrent creates.
type Course struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	NRC               string         `gorm:"type:varchar(6);uniqueIndex;not null" json:"nrc"`
	NombreMateria     string         `gorm:"type:varchar(200);not null" json:"nombre_materia"`
	Seccion           string         `gorm:"type:varchar(3);not null" json:"seccion"`
	Dias              datatypes.JSON `gorm:"type:jsonb;not null" json:"dias"`
	HoraInicio        string         `gorm:"type:varchar(5);not null" json:"hora_inicio"` // canonical "HH:MM"
	HoraFin           string         `gorm:"type:varchar(5);not null" json:"hora_fin"`
	Salon             string         `gorm:"type:varchar(15);not null" json:"salon"`
	ProgramaEducativo string         `gorm:"type:varchar(100);not null" json:"programa_educativo"`
	// Nullable on purpose: a section may have no teacher assigned yet, and
	// deleting the teacher must not delete the section (SET NULL).
	ProfesorAsignadoID *uint  `gorm:"index" json:"profesor_asignado"`
	Creditos           string `gorm:"type:varchar(2);not null" json:"creditos"`

	// Relationships
	ProfesorAsignado *Teacher `gorm:"foreignKey:ProfesorAsignadoID;constraint:OnDelete:SET NULL" json:"profesor,omitempty"`
}
