package server

import (
	"io"
	"net/http"

	apperrors "github.com/brainbin/go-web-gateway/internal/errors"
	"github.com/brainbin/go-web-gateway/upload"
)

// UploadHandler accepts one multipart document, validates it locally
// and hands it to the background ingestion tracker. Validation
// failures never leave the gateway.
func (s *Server) UploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxSize := s.config.GetMaxFileSize()
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+1024*1024)

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "A file is required")
			return
		}
		defer file.Close()

		if err := upload.Validate(header.Filename, header.Size, s.config); err != nil {
			writeError(w, http.StatusBadRequest, upload.FriendlyMessage(err.Error()))
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Could not read the uploaded file")
			return
		}

		token, _, ok := s.accessToken()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not signed in")
			return
		}

		task, err := s.tracker.Submit(r.Context(), token, header.Filename, content)
		if err != nil {
			writeError(w, statusForError(err), upload.FriendlyMessage(err.Error()))
			return
		}

		writeJSON(w, http.StatusAccepted, task)
	}
}

func (s *Server) ListFilesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, userID, ok := s.accessToken()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not signed in")
			return
		}

		files, err := s.api.ListFiles(r.Context(), token, userID)
		if err != nil {
			writeAPIError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, files)
	}
}

func (s *Server) DeleteFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := r.PathValue("filename")
		if filename == "" {
			writeError(w, http.StatusBadRequest, "A filename is required")
			return
		}

		token, userID, ok := s.accessToken()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not signed in")
			return
		}

		if err := s.api.DeleteFile(r.Context(), token, userID, filename); err != nil {
			writeAPIError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ListTasksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.tracker.Tasks())
	}
}

// DismissTaskHandler removes a finished task from the tracker. Active
// tasks are refused so an in-flight ingestion is never orphaned.
func (s *Server) DismissTaskHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.tracker.Dismiss(r.PathValue("id"))
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case apperrors.Is(err, apperrors.ErrTaskNotFound):
			writeError(w, http.StatusNotFound, "Task not found")
		case apperrors.Is(err, apperrors.ErrTaskNotTerminal):
			writeError(w, http.StatusConflict, "Task is still running")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

// statusForError picks the response code for a failed submission,
// keeping the backend's status when it gave one.
func statusForError(err error) int {
	var remoteErr *apperrors.RemoteError
	if apperrors.As(err, &remoteErr) {
		return remoteErr.StatusCode
	}
	if apperrors.IsTimeout(err) {
		return http.StatusGatewayTimeout
	}
	if apperrors.IsNetwork(err) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
