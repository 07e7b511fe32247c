package repositories

import (
	"context"
	"fmt"

	"manytomany/database"
	"manytomany/models"

	"gorm.io/gorm"
)

var _ ProjectRepository = (*GormProjectRepository)(nil)

type GormProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) FindAllOrderByName(ctx context.Context) ([]*models.Project, error) {
	tx, err := database.OrderByName(database.Conn(ctx, r.db), models.Project{})
	if err != nil {
		return nil, err
	}

	projects := []*models.Project{}
	if res := tx.Find(&projects); res.Error != nil {
		return nil, fmt.Errorf("failed to list projects: %w", res.Error)
	}
	return projects, nil
}

func (r *GormProjectRepository) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	project := &models.Project{}
	res := database.Conn(ctx, r.db).First(project, id)
	if res.Error != nil {
		return nil, notFound(res.Error)
	}
	return project, nil
}

// FindByIDForUpdate locks the project row until the surrounding
// transaction ends. The lock also holds back inserts of student_projects
// rows referencing the project.
func (r *GormProjectRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Project, error) {
	tx := database.Conn(ctx, r.db)

	project := &models.Project{}
	res := tx.Clauses(database.RowLock(tx.Dialector.Name(), database.LockUpdate, false)).First(project, id)
	if res.Error != nil {
		return nil, notFound(res.Error)
	}
	return project, nil
}

func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	res := database.Conn(ctx, r.db).Omit("Students").Create(project)
	if res.Error != nil {
		return fmt.Errorf("failed to create project: %w", res.Error)
	}
	return nil
}

// Delete fails with a foreign key violation while student_projects rows
// still reference the project.
func (r *GormProjectRepository) Delete(ctx context.Context, project *models.Project) error {
	res := database.Conn(ctx, r.db).Delete(project)
	if res.Error != nil {
		return fmt.Errorf("failed to delete project %d: %w", project.Id, res.Error)
	}
	return nil
}

func (r *GormProjectRepository) Students(ctx context.Context, project *models.Project) ([]*models.Student, error) {
	tx, err := database.OrderByName(database.Conn(ctx, r.db).Model(project), models.Student{})
	if err != nil {
		return nil, err
	}

	students := []*models.Student{}
	if err := tx.Association("Students").Find(&students); err != nil {
		return nil, fmt.Errorf("failed to load students of project %d: %w", project.Id, err)
	}
	return students, nil
}

func (r *GormProjectRepository) HasStudent(ctx context.Context, project *models.Project, student *models.Student) (bool, error) {
	return associated(ctx, r.db, student.Id, project.Id)
}
