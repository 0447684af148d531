package database

import (
	"github.com/webmovil/escolar-api/model"
	"gorm.io/gorm"
)

// GormLookups implements schedule.Lookups on top of the GORM connection.
type GormLookups struct {
	db *gorm.DB
}

func NewGormLookups(db *gorm.DB) *GormLookups {
	return &GormLookups{db: db}
}

// CourseNRCExists reports whether another course already carries the NRC.
// excludeID exempts the course being updated (0 = no exemption).
func (l *GormLookups) CourseNRCExists(nrc string, excludeID uint) (bool, error) {
	query := l.db.Model(&model.Course{}).Where("nrc = ?", nrc)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// TeacherExists reports whether a teacher profile with the id exists.
func (l *GormLookups) TeacherExists(id uint) (bool, error) {
	var count int64
	err := l.db.Model(&model.Teacher{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
