package models

import "manytomany/database"

type Project struct {
	database.BaseModel
	Name string `gorm:"not null"`

	// Inverse side of Student.Projects; both share the student_projects rows.
	Students []*Student `gorm:"many2many:student_projects;joinForeignKey:ProjectId;joinReferences:StudentId"`
}
