// Package repositories holds the persistence gateways for students and
// projects. Every method resolves its connection through database.Conn, so
// calls made inside Transactor.Transaction join the open transaction.
package repositories

import (
	"context"
	"errors"

	"manytomany/apperrors"
	"manytomany/database"
	"manytomany/models"

	"gorm.io/gorm"
)

// StudentRepository is the gateway for students and the owning side of the
// student/project association.
type StudentRepository interface {
	FindAllOrderByName(ctx context.Context) ([]*models.Student, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, student *models.Student) error

	Projects(ctx context.Context, student *models.Student) ([]*models.Project, error)
	HasProject(ctx context.Context, student *models.Student, project *models.Project) (bool, error)
	AddProject(ctx context.Context, student *models.Student, project *models.Project) error
	RemoveProject(ctx context.Context, student *models.Student, project *models.Project) error
}

// ProjectRepository is the gateway for projects, the inverse side of the
// association.
type ProjectRepository interface {
	FindAllOrderByName(ctx context.Context) ([]*models.Project, error)
	FindByID(ctx context.Context, id int64) (*models.Project, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, project *models.Project) error

	Students(ctx context.Context, project *models.Project) ([]*models.Student, error)
	HasStudent(ctx context.Context, project *models.Project, student *models.Student) (bool, error)
}

// Transactor runs fn atomically. Repository calls made with the ctx handed
// to fn take part in the transaction.
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ Transactor = (*GormTransactor)(nil)

type GormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

func (t *GormTransactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.Conn(ctx, t.db).Transaction(func(tx *gorm.DB) error {
		return fn(database.WithTx(ctx, tx))
	})
}

func associated(ctx context.Context, db *gorm.DB, studentId, projectId int64) (bool, error) {
	var count int64
	r := database.Conn(ctx, db).Model(&models.StudentProject{}).
		Where(&models.StudentProject{StudentId: studentId, ProjectId: projectId}).
		Count(&count)
	if r.Error != nil {
		return false, r.Error
	}
	return count > 0, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	return err
}
