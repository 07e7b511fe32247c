package handlers

import (
	"context"
	"fmt"
	"net/http"

	"manytomany/apperrors"
	"manytomany/models"
	"manytomany/repositories"

	"go.uber.org/zap"
)

// ProjectsHandler serves /projects and the project side of the
// student/project association. Association changes are written through
// the student repository, which owns the relationship.
type ProjectsHandler struct {
	projects   repositories.ProjectRepository
	students   repositories.StudentRepository
	transactor repositories.Transactor
	links      *Links
	logger     *zap.Logger
}

func NewProjectsHandler(
	projects repositories.ProjectRepository,
	students repositories.StudentRepository,
	transactor repositories.Transactor,
	links *Links,
	logger *zap.Logger,
) *ProjectsHandler {
	return &ProjectsHandler{
		projects:   projects,
		students:   students,
		transactor: transactor,
		links:      links,
		logger:     logger,
	}
}

// RegisterRoutes registers the projects handler's routes on the given mux.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /projects", h.List)
	mux.HandleFunc("POST /projects", h.Create)
	mux.HandleFunc("GET /projects/{id}", h.Get)
	mux.HandleFunc("DELETE /projects/{id}", h.Delete)
	mux.HandleFunc("GET /projects/{id}/students", h.ListStudents)
	mux.HandleFunc("POST /projects/{id}/students", h.AddStudent)
	mux.HandleFunc("GET /projects/{id}/students/{rid}", h.GetStudent)
	mux.HandleFunc("DELETE /projects/{id}/students/{rid}", h.RemoveStudent)
}

// List handles GET /projects
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.FindAllOrderByName(r.Context())
	if err != nil {
		writeError(w, h.logger, "Failed to list projects", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, h.links.Projects(projects)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /projects
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, "Failed to decode project", err)
		return
	}

	project := &models.Project{Name: req.Name}
	if err := h.projects.Create(r.Context(), project); err != nil {
		writeError(w, h.logger, "Failed to create project", err)
		return
	}

	resource := h.links.Project(project)
	if err := writeCreated(w, resource.Href, resource); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /projects/{id}
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, paramID)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	project, err := h.projects.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "Failed to get project", err, zap.Int64("project_id", id))
		return
	}

	if err := WriteJSON(w, http.StatusOK, h.links.Project(project)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /projects/{id}
// The store does not cascade from projects, so every student is unlinked
// first. Lock, unlink and delete share one transaction.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, paramID)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var unlinked int
	err := h.transactor.Transaction(r.Context(), func(ctx context.Context) error {
		project, err := h.projects.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		students, err := h.projects.Students(ctx, project)
		if err != nil {
			return err
		}
		for _, student := range students {
			if err := h.students.RemoveProject(ctx, student, project); err != nil {
				return err
			}
		}
		unlinked = len(students)

		return h.projects.Delete(ctx, project)
	})
	if err != nil {
		writeError(w, h.logger, "Failed to delete project", err, zap.Int64("project_id", id))
		return
	}

	h.logger.Info("Deleted project",
		zap.Int64("project_id", id),
		zap.Int("unlinked_students", unlinked))
	w.WriteHeader(http.StatusNoContent)
}

// ListStudents handles GET /projects/{id}/students
func (h *ProjectsHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, paramID)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	project, err := h.projects.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "Failed to get project", err, zap.Int64("project_id", id))
		return
	}

	students, err := h.projects.Students(r.Context(), project)
	if err != nil {
		writeError(w, h.logger, "Failed to list students of project", err, zap.Int64("project_id", id))
		return
	}

	if err := WriteJSON(w, http.StatusOK, h.links.Students(students)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// AddStudent handles POST /projects/{id}/students
func (h *ProjectsHandler) AddStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, paramID)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	project, err := h.projects.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "Failed to get project", err, zap.Int64("project_id", id))
		return
	}

	var ref refRequest
	if err := decodeBody(r, &ref); err != nil {
		writeError(w, h.logger, "Failed to decode student reference", err, zap.Int64("project_id", id))
		return
	}

	student, err := h.students.FindByID(r.Context(), ref.Id)
	if err != nil {
		writeError(w, h.logger, "Failed to get student", err, zap.Int64("student_id", ref.Id))
		return
	}

	if err := h.students.AddProject(r.Context(), student, project); err != nil {
		writeError(w, h.logger, "Failed to add student to project", err,
			zap.Int64("project_id", id),
			zap.Int64("student_id", student.Id))
		return
	}

	location := h.links.SubResource(projectsResource, project.Id, studentsResource, student.Id)
	if err := writeCreated(w, location, h.links.Student(student)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetStudent handles GET /projects/{id}/students/{rid}
func (h *ProjectsHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, sid, ok := parseIDs(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	_, student, err := h.associated(r.Context(), id, sid)
	if err != nil {
		writeError(w, h.logger, "Failed to get student of project", err,
			zap.Int64("project_id", id),
			zap.Int64("student_id", sid))
		return
	}

	if err := WriteJSON(w, http.StatusOK, h.links.Student(student)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// RemoveStudent handles DELETE /projects/{id}/students/{rid}
func (h *ProjectsHandler) RemoveStudent(w http.ResponseWriter, r *http.Request) {
	id, sid, ok := parseIDs(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	project, student, err := h.associated(r.Context(), id, sid)
	if err == nil {
		err = h.students.RemoveProject(r.Context(), student, project)
	}
	if err != nil {
		writeError(w, h.logger, "Failed to remove student from project", err,
			zap.Int64("project_id", id),
			zap.Int64("student_id", sid))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectsHandler) associated(ctx context.Context, projectID, studentID int64) (*models.Project, *models.Student, error) {
	project, err := h.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	student, err := h.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}

	ok, err := h.projects.HasStudent(ctx, project, student)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("student %d of project %d: %w", studentID, projectID, apperrors.ErrNotFound)
	}
	return project, student, nil
}
