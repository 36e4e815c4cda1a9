package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/textify/internal/common"
	"github.com/dmitrijs2005/textify/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds request bodies; the largest document content is 1 MiB.
const maxBodyBytes = 2 << 20

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// decodeJSON reads a JSON body into v. Any decoding failure is a validation
// error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(v)
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &tooLarge):
		return common.Validation("Request body too large")
	case errors.Is(err, io.EOF):
		return common.Validation("Request body is empty")
	case errors.As(err, &typeErr) && typeErr.Field == "":
		return common.Validation("Request body must be a JSON object")
	case typeErr != nil:
		return common.Validation(typeErr.Field + " has an invalid type")
	default:
		return common.Validation("Invalid JSON body")
	}
}

func (s *HTTPServer) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Textify API"})
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var in models.Registration
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}

// login accepts the OAuth2 password form: username and password fields,
// form-encoded.
func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	userName := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if userName == "" || password == "" {
		writeDetail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := s.users.Login(r.Context(), userName, password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: common.TokenType})
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, user.Public())
}

func (s *HTTPServer) listDocuments(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	docs, err := s.documents.List(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

func (s *HTTPServer) createDocument(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var in models.DocumentInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.documents.Create(r.Context(), user.ID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) getDocument(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	doc, err := s.documents.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) updateDocument(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var p models.Patch
	if err := decodeJSON(w, r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.documents.Update(r.Context(), user.ID, chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) deleteDocument(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	if err := s.documents.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) getProfile(w http.ResponseWriter, r *http.Request) {
	current, _ := UserFromContext(r.Context())

	user, err := s.users.GetProfile(r.Context(), current.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}

func (s *HTTPServer) updateProfile(w http.ResponseWriter, r *http.Request) {
	current, _ := UserFromContext(r.Context())

	var p models.Patch
	if err := decodeJSON(w, r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), current, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}

func (s *HTTPServer) deleteProfile(w http.ResponseWriter, r *http.Request) {
	current, _ := UserFromContext(r.Context())

	if err := s.users.DeleteProfile(r.Context(), current.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
