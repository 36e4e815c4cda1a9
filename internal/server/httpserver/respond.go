package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/textify/internal/common"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	credentialsDetail   = "Could not validate credentials"
	loginFailedDetail   = "Incorrect username or password"
	internalErrorDetail = "Internal server error"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeError maps the error taxonomy onto status codes. Unauthorized causes
// and internal failures are logged but never echoed to the client.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		s.logger.Info(ctx, "unauthorized", "path", r.URL.Path, "cause", err.Error())
		detail := credentialsDetail
		if errors.Is(err, common.ErrInvalidCredentials) {
			detail = loginFailedDetail
		}
		w.Header().Set("WWW-Authenticate", common.BearerScheme)
		writeDetail(w, http.StatusUnauthorized, detail)

	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorConflict):
		writeDetail(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, common.ErrorNotFound):
		detail := "Not found"
		var de *common.DetailedError
		if errors.As(err, &de) {
			detail = de.Message
		}
		writeDetail(w, http.StatusNotFound, detail)

	default:
		s.logger.Error(ctx, "request failed",
			"path", r.URL.Path,
			"error", err.Error(),
			"request_id", middleware.GetReqID(ctx),
		)
		writeDetail(w, http.StatusInternalServerError, internalErrorDetail)
	}
}
