package repositories

import (
	"context"
	"fmt"

	"manytomany/database"
	"manytomany/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ StudentRepository = (*GormStudentRepository)(nil)

type GormStudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

func (r *GormStudentRepository) FindAllOrderByName(ctx context.Context) ([]*models.Student, error) {
	tx, err := database.OrderByName(database.Conn(ctx, r.db), models.Student{})
	if err != nil {
		return nil, err
	}

	students := []*models.Student{}
	if res := tx.Find(&students); res.Error != nil {
		return nil, fmt.Errorf("failed to list students: %w", res.Error)
	}
	return students, nil
}

func (r *GormStudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	student := &models.Student{}
	res := database.Conn(ctx, r.db).First(student, id)
	if res.Error != nil {
		return nil, notFound(res.Error)
	}
	return student, nil
}

func (r *GormStudentRepository) Create(ctx context.Context, student *models.Student) error {
	res := database.Conn(ctx, r.db).Omit("Projects").Create(student)
	if res.Error != nil {
		return fmt.Errorf("failed to create student: %w", res.Error)
	}
	return nil
}

// Delete removes the row; its student_projects rows go with it through
// ON DELETE CASCADE.
func (r *GormStudentRepository) Delete(ctx context.Context, student *models.Student) error {
	res := database.Conn(ctx, r.db).Delete(student)
	if res.Error != nil {
		return fmt.Errorf("failed to delete student %d: %w", student.Id, res.Error)
	}
	return nil
}

func (r *GormStudentRepository) Projects(ctx context.Context, student *models.Student) ([]*models.Project, error) {
	tx, err := database.OrderByName(database.Conn(ctx, r.db).Model(student), models.Project{})
	if err != nil {
		return nil, err
	}

	projects := []*models.Project{}
	if err := tx.Association("Projects").Find(&projects); err != nil {
		return nil, fmt.Errorf("failed to load projects of student %d: %w", student.Id, err)
	}
	return projects, nil
}

func (r *GormStudentRepository) HasProject(ctx context.Context, student *models.Student, project *models.Project) (bool, error) {
	return associated(ctx, r.db, student.Id, project.Id)
}

// AddProject inserts only the student_projects row; neither entity is
// written. An existing row makes it a no-op, and a project deleted since it
// was loaded fails the foreign key check.
func (r *GormStudentRepository) AddProject(ctx context.Context, student *models.Student, project *models.Project) error {
	link := &models.StudentProject{StudentId: student.Id, ProjectId: project.Id}
	res := database.Conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(link)
	if res.Error != nil {
		return fmt.Errorf("failed to add project %d to student %d: %w", project.Id, student.Id, res.Error)
	}
	return nil
}

func (r *GormStudentRepository) RemoveProject(ctx context.Context, student *models.Student, project *models.Project) error {
	err := database.Conn(ctx, r.db).Model(student).Association("Projects").Delete(project)
	if err != nil {
		return fmt.Errorf("failed to remove project %d from student %d: %w", project.Id, student.Id, err)
	}
	return nil
}
