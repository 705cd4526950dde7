package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mal-ai/internal/models"
	"mal-ai/internal/services"
	"mal-ai/internal/web"
)

const (
	maxMultipartMemory = 8 << 20 // 8 MB
	pdfFilename        = "generated_content.pdf"
	timeLayout         = time.RFC3339
)

type Server struct {
	mux       *http.ServeMux
	log       zerolog.Logger
	content   *services.ContentService
	documents *services.DocumentService
	pdf       *services.PDFService
	results   *ResultStore
	maxBody   int64
}

// Options configures the request limits of a Server.
type Options struct {
	MaxUploadBytes int64
	ResultCapacity int
}

func NewServer(
	log zerolog.Logger,
	content *services.ContentService,
	documents *services.DocumentService,
	pdf *services.PDFService,
	opts Options,
) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		log:       log,
		content:   content,
		documents: documents,
		pdf:       pdf,
		results:   NewResultStore(opts.ResultCapacity),
		maxBody:   opts.MaxUploadBytes,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.withRequestLogger(s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/options", s.handleOptions)
	s.mux.HandleFunc("/api/generate", s.handleGenerate)
	s.mux.HandleFunc("/api/results/", s.handleResultActions)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/", web.Index())
}

func (s *Server) withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := s.log.With().
			Str("request_id", uuid.NewString()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(log.WithContext(r.Context())))

		log.Debug().
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"familiarities": models.Familiarities,
		"modes":         models.Modes,
		"time": map[string]int{
			"min":     models.MinTimeMinutes,
			"max":     models.MaxTimeMinutes,
			"default": models.DefaultTimeMinutes,
		},
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	log := zerolog.Ctx(r.Context())

	if s.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if form := r.MultipartForm; form != nil {
		defer form.RemoveAll()
	}

	req := models.GenerationRequest{
		Topic:        r.FormValue("topic"),
		Familiarity:  models.Familiarity(r.FormValue("familiarity")),
		Mode:         models.Mode(r.FormValue("mode")),
		TimeMinutes:  parseMinutes(r.FormValue("time")),
		Instructions: r.FormValue("instructions"),
		Language:     r.FormValue("language"),
	}

	// Reject incomplete requests before reading any upload.
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	docs, err := s.documents.Collect(uploads(r.MultipartForm.File["files"]))
	if err != nil {
		if errors.Is(err, services.ErrDocumentTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.content.Generate(r.Context(), req, docs)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrIncompleteRequest):
		writeValidationError(w, err)
		return
	case errors.Is(err, services.ErrGenerationFailed):
		writeError(w, http.StatusBadGateway, "Content generation failed. Please try again.")
		return
	default:
		log.Error().Err(err).Msg("Generation request failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.results.Put(result)
	writeJSON(w, http.StatusOK, resultPayload(result))
}

func (s *Server) handleResultActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/results/")
	path = strings.Trim(path, "/")
	parts := strings.Split(path, "/")
	if parts[0] == "" || len(parts) > 2 || (len(parts) == 2 && parts[1] != "pdf") {
		http.NotFound(w, r)
		return
	}

	result, ok := s.results.Get(parts[0])
	if !ok {
		writeError(w, http.StatusNotFound, "result not found")
		return
	}

	if len(parts) == 1 {
		writeJSON(w, http.StatusOK, resultPayload(result))
		return
	}
	s.writePDF(w, r, result.Content)
}

type renderRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload renderRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	s.writePDF(w, r, payload.Content)
}

func (s *Server) writePDF(w http.ResponseWriter, r *http.Request, content string) {
	data, err := s.pdf.Render(content)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to render PDF")
		writeError(w, http.StatusInternalServerError, "failed to render pdf")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+pdfFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func resultPayload(res *models.GenerationResult) map[string]any {
	return map[string]any{
		"id":        res.ID,
		"content":   res.Content,
		"model":     res.Model,
		"request":   res.Request,
		"createdAt": res.CreatedAt.Format(timeLayout),
	}
}

// parseMinutes returns the default for an absent field and 0, which fails
// validation, for anything that is not a number.
func parseMinutes(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.DefaultTimeMinutes
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func uploads(files []*multipart.FileHeader) []services.Upload {
	out := make([]services.Upload, 0, len(files))
	for _, fh := range files {
		fh := fh
		out = append(out, services.Upload{
			Name: fh.Filename,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return out
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "Please fill in all required fields.",
			"fields": verr.Fields,
		})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
