package models

import "manytomany/database"

type Student struct {
	database.BaseModel
	Name string `gorm:"not null"`

	// Loaded on demand through the repositories, never eagerly.
	Projects []*Project `gorm:"many2many:student_projects;joinForeignKey:StudentId;joinReferences:ProjectId"`
}
