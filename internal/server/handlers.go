package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/MeKo-Tech/kviit/internal/layout"
	"github.com/MeKo-Tech/kviit/internal/pipeline"
	"github.com/MeKo-Tech/kviit/internal/receipt"
)

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// imageHandler parses an uploaded receipt scan.
func (s *Server) imageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, ok := s.readUpload(w, r, "image")
	if !ok {
		return
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.writeError(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	start := time.Now()
	rec, err := s.parser.ParseImage(img)
	parseDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
	if err != nil {
		parseRequestsTotal.WithLabelValues("image", "error").Inc()
		s.logger.Error("image parse failed", "error", err)
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, layout.ErrNoSeparators):
			// The scan cannot be zoned; the upload, not the server, is at fault.
			status = http.StatusUnprocessableEntity
		case errors.Is(err, pipeline.ErrNoOCRBackend):
			status = http.StatusNotImplemented
		}
		s.writeError(w, err.Error(), status)
		return
	}
	s.finishParse(w, "image", rec)
}

// markupHandler parses an uploaded e-receipt HTML document.
func (s *Server) markupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, ok := s.readUpload(w, r, "markup")
	if !ok {
		return
	}

	start := time.Now()
	rec, err := s.parser.ParseMarkup(bytes.NewReader(data))
	parseDuration.WithLabelValues("markup").Observe(time.Since(start).Seconds())
	if err != nil {
		parseRequestsTotal.WithLabelValues("markup", "error").Inc()
		s.logger.Error("markup parse failed", "error", err)
		s.writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.finishParse(w, "markup", rec)
}

// readUpload pulls the named file out of a size-limited multipart form.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, bool) {
	limit := s.cfg.MaxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		s.writeError(w, "Failed to parse form data", http.StatusBadRequest)
		return nil, false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		s.writeError(w, "No "+field+" file provided", http.StatusBadRequest)
		return nil, false
	}
	defer func() { _ = file.Close() }()
	if header.Size > limit {
		s.writeError(w, "File too large", http.StatusRequestEntityTooLarge)
		return nil, false
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, "Failed to read upload", http.StatusInternalServerError)
		return nil, false
	}
	return data, true
}

func (s *Server) finishParse(w http.ResponseWriter, source string, rec receipt.Receipt) {
	parseRequestsTotal.WithLabelValues(source, "success").Inc()
	itemsPerReceipt.WithLabelValues(source).Observe(float64(len(rec.Items)))
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encoding response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, msg string, status int) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}
