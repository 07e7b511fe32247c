package apperrors

import "errors"

// ErrNotFound is returned by the repositories when a lookup by id, or a
// membership check between a student and a project, finds no row.
var ErrNotFound = errors.New("not found")
