package models

// StudentProject is one association row. student_id cascades on student
// delete, project_id does not: a project with students cannot be deleted
// until every row pointing at it is gone.
type StudentProject struct {
	StudentId int64 `gorm:"primaryKey;autoIncrement:false"`
	ProjectId int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (StudentProject) TableName() string {
	return "student_projects"
}
