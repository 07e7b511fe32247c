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

// StudentsHandler serves /students and the student side of the
// student/project association.
type StudentsHandler struct {
	students repositories.StudentRepository
	projects repositories.ProjectRepository
	links    *Links
	logger   *zap.Logger
}

func NewStudentsHandler(
	students repositories.StudentRepository,
	projects repositories.ProjectRepository,
	links *Links,
	logger *zap.Logger,
) *StudentsHandler {
	return &StudentsHandler{
		students: students,
		projects: projects,
		links:    links,
		logger:   logger,
	}
}

// RegisterRoutes registers the students handler's routes on the given mux.
func (h *StudentsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /students", h.List)
	mux.HandleFunc("POST /students", h.Create)
	mux.HandleFunc("GET /students/{id}", h.Get)
	mux.HandleFunc("DELETE /students/{id}", h.Delete)
	mux.HandleFunc("GET /students/{id}/projects", h.ListProjects)
	mux.HandleFunc("POST /students/{id}/projects", h.AddProject)
	mux.HandleFunc("GET /students/{id}/projects/{rid}", h.GetProject)
	mux.HandleFunc("DELETE /students/{id}/projects/{rid}", h.RemoveProject)
}

// List handles GET /students
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.FindAllOrderByName(r.Context())
	if err != nil {
		writeError(w, h.logger, "Failed to list students", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, h.links.Students(students)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /students
// Only the name is taken from the body; the id is assigned by the store.
func (h *StudentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, "Failed to decode student", err)
		return
	}

	student := &models.Student{Name: req.Name}
	if err := h.students.Create(r.Context(), student); err != nil {
		writeError(w, h.logger, "Failed to create student", err)
		return
	}

	resource := h.links.Student(student)
	if err := writeCreated(w, resource.Href, resource); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /students/{id}
func (h *StudentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, paramID)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	student, err := h.students.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "Failed to get student", err, zap.Int64("student_id", id))
		return
	}

	if err := WriteJSON(w, http.StatusOK, h.links.Student(student)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /students/{id}
// The student's association rows are removed by the store.
func (h *StudentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, paramID)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	student, err := h.students.FindByID(r.Context(), id)
	if err == nil {
		err = h.students.Delete(r.Context(), student)
	}
	if err != nil {
		writeError(w, h.logger, "Failed to delete student", err, zap.Int64("student_id", id))
		return
	}

	h.logger.Info("Deleted student", zap.Int64("student_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ListProjects handles GET /students/{id}/projects
func (h *StudentsHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, paramID)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	student, err := h.students.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "Failed to get student", err, zap.Int64("student_id", id))
		return
	}

	projects, err := h.students.Projects(r.Context(), student)
	if err != nil {
		writeError(w, h.logger, "Failed to list projects of student", err, zap.Int64("student_id", id))
		return
	}

	if err := WriteJSON(w, http.StatusOK, h.links.Projects(projects)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// AddProject handles POST /students/{id}/projects
// The body references an existing project by id. Adding a project that is
// already associated succeeds without creating a second row.
func (h *StudentsHandler) AddProject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, paramID)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	student, err := h.students.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "Failed to get student", err, zap.Int64("student_id", id))
		return
	}

	var ref refRequest
	if err := decodeBody(r, &ref); err != nil {
		writeError(w, h.logger, "Failed to decode project reference", err, zap.Int64("student_id", id))
		return
	}

	project, err := h.projects.FindByID(r.Context(), ref.Id)
	if err != nil {
		writeError(w, h.logger, "Failed to get project", err, zap.Int64("project_id", ref.Id))
		return
	}

	if err := h.students.AddProject(r.Context(), student, project); err != nil {
		writeError(w, h.logger, "Failed to add project to student", err,
			zap.Int64("student_id", id),
			zap.Int64("project_id", project.Id))
		return
	}

	location := h.links.SubResource(studentsResource, student.Id, projectsResource, project.Id)
	if err := writeCreated(w, location, h.links.Project(project)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetProject handles GET /students/{id}/projects/{rid}
func (h *StudentsHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, pid, ok := parseIDs(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	_, project, err := h.associated(r.Context(), id, pid)
	if err != nil {
		writeError(w, h.logger, "Failed to get project of student", err,
			zap.Int64("student_id", id),
			zap.Int64("project_id", pid))
		return
	}

	if err := WriteJSON(w, http.StatusOK, h.links.Project(project)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// RemoveProject handles DELETE /students/{id}/projects/{rid}
// Removing an association that does not exist answers 404.
func (h *StudentsHandler) RemoveProject(w http.ResponseWriter, r *http.Request) {
	id, pid, ok := parseIDs(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	student, project, err := h.associated(r.Context(), id, pid)
	if err == nil {
		err = h.students.RemoveProject(r.Context(), student, project)
	}
	if err != nil {
		writeError(w, h.logger, "Failed to remove project from student", err,
			zap.Int64("student_id", id),
			zap.Int64("project_id", pid))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// associated loads both entities and fails with ErrNotFound unless they
// are linked.
func (h *StudentsHandler) associated(ctx context.Context, studentID, projectID int64) (*models.Student, *models.Project, error) {
	student, err := h.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	project, err := h.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	ok, err := h.students.HasProject(ctx, student, project)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("project %d of student %d: %w", projectID, studentID, apperrors.ErrNotFound)
	}
	return student, project, nil
}
