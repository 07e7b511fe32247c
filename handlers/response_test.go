package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"manytomany/apperrors"
	"manytomany/database"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	err := WriteJSON(rec, http.StatusAccepted, map[string]string{"status": "ok"})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestWriteError_NotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := httptest.NewRecorder()

	writeError(rec, zap.New(core), "Failed to get student", fmt.Errorf("student 3: %w", apperrors.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Zero(t, logs.Len())
}

func TestWriteError_LogsSQLState(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := httptest.NewRecorder()
	pgErr := &pgconn.PgError{Code: database.SQLStateForeignKeyViolation}

	writeError(rec, zap.New(core), "Failed to delete project", fmt.Errorf("delete: %w", pgErr), zap.Int64("project_id", 1))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "23503", fields["sqlstate"])
		assert.Equal(t, int64(1), fields["project_id"])
	}
}
