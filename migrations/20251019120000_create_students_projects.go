package migrations

import (
	"github.com/ottomillrath/goose/v2"
	"gorm.io/gorm"
)

func init() {
	goose.AddMigration(service, upCreateStudentsProjects, downCreateStudentsProjects)
}

// The join table is written by hand instead of AutoMigrate: the two
// foreign keys need different ON DELETE behaviour, which gorm's many2many
// constraint tag cannot express per side.
var createStudentsProjects = []string{
	`CREATE TABLE students (
		id         BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		name       TEXT NOT NULL
	)`,
	`CREATE INDEX idx_students_name ON students (name)`,
	`CREATE TABLE projects (
		id         BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		name       TEXT NOT NULL
	)`,
	`CREATE INDEX idx_projects_name ON projects (name)`,
	`CREATE TABLE student_projects (
		student_id BIGINT NOT NULL,
		project_id BIGINT NOT NULL,
		PRIMARY KEY (student_id, project_id),
		CONSTRAINT fk_student_projects_student FOREIGN KEY (student_id)
			REFERENCES students (id) ON DELETE CASCADE,
		CONSTRAINT fk_student_projects_project FOREIGN KEY (project_id)
			REFERENCES projects (id)
	)`,
	`CREATE INDEX idx_student_projects_project_id ON student_projects (project_id)`,
}

func upCreateStudentsProjects(tx *gorm.DB) error {
	for _, stmt := range createStudentsProjects {
		if r := tx.Exec(stmt); r.Error != nil {
			return r.Error
		}
	}
	return nil
}

func downCreateStudentsProjects(tx *gorm.DB) error {
	r := tx.Exec(`DROP TABLE IF EXISTS student_projects, projects, students`)
	return r.Error
}
