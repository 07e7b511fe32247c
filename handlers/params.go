package handlers

import (
	"net/http"
	"strconv"
)

// Path parameter names.
const (
	paramID        = "id"
	paramRelatedID = "rid"
)

// parseID reads a positive base-10 id from the named path parameter. Any
// other value cannot match a row, so callers answer it with 404.
func parseID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseIDs reads the entity id and the related entity id of a
// sub-resource path.
func parseIDs(r *http.Request) (int64, int64, bool) {
	id, ok := parseID(r, paramID)
	if !ok {
		return 0, 0, false
	}
	rid, ok := parseID(r, paramRelatedID)
	if !ok {
		return 0, 0, false
	}
	return id, rid, true
}
