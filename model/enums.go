package model

// Weekday is a school weekday. The accented Spanish names are part of the
// wire contract with the mobile app and are matched case-sensitively.
type Weekday string

const (
	Lunes     Weekday = "Lunes"
	Martes    Weekday = "Martes"
	Miercoles Weekday = "Miércoles"
	Jueves    Weekday = "Jueves"
	Viernes   Weekday = "Viernes"
)

// Weekdays returns the valid course days in week order.
func Weekdays() []Weekday {
	return []Weekday{Lunes, Martes, Miercoles, Jueves, Viernes}
}

// IsValid reports whether d is one of the five course days.
func (d Weekday) IsValid() bool {
	switch d {
	case Lunes, Martes, Miercoles, Jueves, Viernes:
		return true
	}
	return false
}

// Program is an educational program a course belongs to.
type Program string

const (
	ProgramICC Program = "Ingeniería en Ciencias de la Computación"
	ProgramLCC Program = "Licenciatura en Ciencias de la Computación"
	ProgramITI Program = "Ingeniería en Tecnologías de la Información"
)

// Programs returns the closed set of educational programs.
func Programs() []Program {
	return []Program{ProgramICC, ProgramLCC, ProgramITI}
}

// IsValid reports whether p is a known educational program.
func (p Program) IsValid() bool {
	switch p {
	case ProgramICC, ProgramLCC, ProgramITI:
		return true
	}
	return false
}

// User roles. Role names double as the group names the mobile app sends
// in the "rol" field on registration.
const (
	RoleAdmin   = "administrador"
	RoleTeacher = "maestro"
	RoleStudent = "alumno"
)

// IsValidRole reports whether role is one of the three actor roles.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleTeacher || role == RoleStudent
}
