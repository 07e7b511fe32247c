package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"manytomany/apperrors"
	"manytomany/database"

	"go.uber.org/zap"
)

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeCreated answers 201 with the Location of the new resource.
func writeCreated(w http.ResponseWriter, location string, data interface{}) error {
	w.Header().Set("Location", location)
	return WriteJSON(w, http.StatusCreated, data)
}

// writeError maps err to a status with an empty body. ErrNotFound becomes
// 404; anything else is logged and becomes 500.
func writeError(w http.ResponseWriter, logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	if errors.Is(err, apperrors.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	fields = append(fields, zap.Error(err))
	if code := database.SQLState(err); code != "" {
		fields = append(fields, zap.String("sqlstate", code))
	}
	logger.Error(msg, fields...)
	w.WriteHeader(http.StatusInternalServerError)
}

func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
