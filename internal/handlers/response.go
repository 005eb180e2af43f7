package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Varun5711/taskapi/internal/logger"
	"github.com/Varun5711/taskapi/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	MsgInvalidBody   = "Invalid request body"
	MsgInternalError = "Internal server error"
	MsgRouteNotFound = "Route not found"

	maxBodyBytes = 1 << 20
)

var httpStatus = map[codes.Code]int{
	codes.InvalidArgument:  http.StatusBadRequest,
	codes.Unauthenticated:  http.StatusUnauthorized,
	codes.PermissionDenied: http.StatusForbidden,
	codes.NotFound:         http.StatusNotFound,
	codes.AlreadyExists:    http.StatusConflict,
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondData(w http.ResponseWriter, status int, message string, data interface{}) {
	respondJSON(w, status, models.Response{Success: true, Message: message, Data: data})
}

func respondList(w http.ResponseWriter, data interface{}, count int) {
	respondJSON(w, http.StatusOK, models.Response{Success: true, Data: data, Count: &count})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse(message))
}

// respondServiceError maps a service error onto its HTTP status. Anything
// outside the known codes is logged and answered with a generic 500.
func respondServiceError(w http.ResponseWriter, log *logger.Logger, err error) {
	st, ok := status.FromError(err)
	if ok {
		if code, known := httpStatus[st.Code()]; known {
			respondError(w, code, st.Message())
			return
		}
	}

	log.Error("Request failed: %v", err)
	respondError(w, http.StatusInternalServerError, MsgInternalError)
}

// decodeJSON reads a JSON object into dst. An empty body decodes as {}.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
