package handlers

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"manytomany/apperrors"
	"manytomany/database"
	"manytomany/models"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type pair struct{ studentId, projectId int64 }

// memStore is an in-memory stand-in for both repositories and the
// transactor. err, when set, is returned by every call.
type memStore struct {
	students    map[int64]*models.Student
	projects    map[int64]*models.Project
	links       map[pair]bool
	nextStudent int64
	nextProject int64

	err          error
	transactions int
}

func newMemStore() *memStore {
	return &memStore{
		students: map[int64]*models.Student{},
		projects: map[int64]*models.Project{},
		links:    map[pair]bool{},
	}
}

func (m *memStore) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.transactions++
	return fn(ctx)
}

func byName[T any](name func(T) string, id func(T) int64) func(a, b T) int {
	return func(a, b T) int {
		if c := cmp.Compare(name(a), name(b)); c != 0 {
			return c
		}
		return cmp.Compare(id(a), id(b))
	}
}

var (
	studentOrder = byName(func(s *models.Student) string { return s.Name }, func(s *models.Student) int64 { return s.Id })
	projectOrder = byName(func(p *models.Project) string { return p.Name }, func(p *models.Project) int64 { return p.Id })
)

type memStudents struct{ *memStore }

func (m memStudents) FindAllOrderByName(ctx context.Context) ([]*models.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []*models.Student{}
	for _, s := range m.students {
		out = append(out, s)
	}
	slices.SortFunc(out, studentOrder)
	return out, nil
}

func (m memStudents) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.students[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return s, nil
}

func (m memStudents) Create(ctx context.Context, s *models.Student) error {
	if m.err != nil {
		return m.err
	}
	m.nextStudent++
	s.Id = m.nextStudent
	m.students[s.Id] = s
	return nil
}

func (m memStudents) Delete(ctx context.Context, s *models.Student) error {
	if m.err != nil {
		return m.err
	}
	delete(m.students, s.Id)
	for l := range m.links {
		if l.studentId == s.Id {
			delete(m.links, l)
		}
	}
	return nil
}

func (m memStudents) Projects(ctx context.Context, s *models.Student) ([]*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []*models.Project{}
	for l := range m.links {
		if l.studentId == s.Id {
			out = append(out, m.projects[l.projectId])
		}
	}
	slices.SortFunc(out, projectOrder)
	return out, nil
}

func (m memStudents) HasProject(ctx context.Context, s *models.Student, p *models.Project) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.links[pair{s.Id, p.Id}], nil
}

func (m memStudents) AddProject(ctx context.Context, s *models.Student, p *models.Project) error {
	if m.err != nil {
		return m.err
	}
	m.links[pair{s.Id, p.Id}] = true
	return nil
}

func (m memStudents) RemoveProject(ctx context.Context, s *models.Student, p *models.Project) error {
	if m.err != nil {
		return m.err
	}
	delete(m.links, pair{s.Id, p.Id})
	return nil
}

type memProjects struct{ *memStore }

func (m memProjects) FindAllOrderByName(ctx context.Context) ([]*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []*models.Project{}
	for _, p := range m.projects {
		out = append(out, p)
	}
	slices.SortFunc(out, projectOrder)
	return out, nil
}

func (m memProjects) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (m memProjects) FindByIDForUpdate(ctx context.Context, id int64) (*models.Project, error) {
	return m.FindByID(ctx, id)
}

func (m memProjects) Create(ctx context.Context, p *models.Project) error {
	if m.err != nil {
		return m.err
	}
	m.nextProject++
	p.Id = m.nextProject
	m.projects[p.Id] = p
	return nil
}

// Delete mirrors the missing cascade on the project side.
func (m memProjects) Delete(ctx context.Context, p *models.Project) error {
	if m.err != nil {
		return m.err
	}
	for l := range m.links {
		if l.projectId == p.Id {
			return fmt.Errorf("delete project %d: %w", p.Id,
				&pgconn.PgError{Code: database.SQLStateForeignKeyViolation})
		}
	}
	delete(m.projects, p.Id)
	return nil
}

func (m memProjects) Students(ctx context.Context, p *models.Project) ([]*models.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []*models.Student{}
	for l := range m.links {
		if l.projectId == p.Id {
			out = append(out, m.students[l.studentId])
		}
	}
	slices.SortFunc(out, studentOrder)
	return out, nil
}

func (m memProjects) HasStudent(ctx context.Context, p *models.Project, s *models.Student) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.links[pair{s.Id, p.Id}], nil
}

var errStore = errors.New("store unavailable")

// newTestMux wires both resource handlers over store with host-relative links.
func newTestMux(store *memStore) *http.ServeMux {
	links := NewLinks("")
	logger := zap.NewNop()

	mux := http.NewServeMux()
	NewStudentsHandler(memStudents{store}, memProjects{store}, links, logger).RegisterRoutes(mux)
	NewProjectsHandler(memProjects{store}, memStudents{store}, store, links, logger).RegisterRoutes(mux)
	return mux
}

type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.err
}
