package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	appdocs "github.com/signaldrift/signaldrift/internal/application/documents"
	appprompts "github.com/signaldrift/signaldrift/internal/application/prompts"
	appruns "github.com/signaldrift/signaldrift/internal/application/runs"
	"github.com/signaldrift/signaldrift/internal/domain/ai"
	docdomain "github.com/signaldrift/signaldrift/internal/domain/documents"
	promptdomain "github.com/signaldrift/signaldrift/internal/domain/prompts"
	rundomain "github.com/signaldrift/signaldrift/internal/domain/runs"
	"github.com/signaldrift/signaldrift/internal/middleware"
)

// maxUploadBytes bounds multipart parsing for document uploads.
const maxUploadBytes = 32 << 20

type Router struct {
	docsSvc    *appdocs.Service
	promptsSvc *appprompts.Service
	runsSvc    *appruns.Service
}

func NewRouter(docsSvc *appdocs.Service, promptsSvc *appprompts.Service, runsSvc *appruns.Service) *Router {
	return &Router{docsSvc: docsSvc, promptsSvc: promptsSvc, runsSvc: runsSvc}
}

// Mount registers all API routes on the given chi router.
func (r *Router) Mount(mux chi.Router) {
	mux.Route("/api/v1", func(rt chi.Router) {
		rt.Get("/health", r.wrap(r.handleHealth))
		rt.Get("/hello", r.wrap(r.handleHello))

		rt.Get("/documents", r.wrap(r.handleListDocuments))
		rt.Post("/documents", r.wrap(r.handleUploadDocument))
		rt.Delete("/documents/{filename}", r.wrap(r.handleDeleteDocument))

		rt.Get("/prompts", r.wrap(r.handleListPrompts))
		rt.Post("/prompts", r.wrap(r.handleCreatePrompt))

		rt.Get("/runs", r.wrap(r.handleListRuns))
		rt.With(middleware.RateLimitMiddleware(10, 1)).
			Post("/analyse", r.wrap(r.handleAnalyse))
	})
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// apiError carries an HTTP status alongside the detail surfaced to clients.
type apiError struct {
	status int
	detail string
}

func (e *apiError) Error() string { return e.detail }

func badRequest(detail string) error {
	return &apiError{status: http.StatusBadRequest, detail: detail}
}

// wrap converts handler errors into {"detail": "..."} JSON responses.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		status := http.StatusInternalServerError
		var ae *apiError
		var disallowed *appdocs.ErrDisallowedType
		switch {
		case errors.As(err, &ae):
			status = ae.status
		case errors.As(err, &disallowed):
			status = http.StatusBadRequest
		case errors.Is(err, appprompts.ErrEmptyText):
			status = http.StatusBadRequest
		case errors.Is(err, appruns.ErrPromptNotFound),
			errors.Is(err, appruns.ErrDocumentNotFound),
			errors.Is(err, docdomain.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, ai.ErrQuotaExceeded):
			status = http.StatusTooManyRequests
		}

		writeJSON(w, status, map[string]string{"detail": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// GET /api/v1/health
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/v1/hello
func (r *Router) handleHello(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{"message": "Hello, World!"})
}

// GET /api/v1/documents
func (r *Router) handleListDocuments(w http.ResponseWriter, req *http.Request) error {
	files, err := r.docsSvc.List(req.Context())
	if err != nil {
		return err
	}
	if files == nil {
		files = []docdomain.FileInfo{}
	}
	return writeJSON(w, http.StatusOK, docdomain.FileList{Files: files})
}

// POST /api/v1/documents
// Multipart form with a single "file" field.
func (r *Router) handleUploadDocument(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return badRequest("Invalid multipart form")
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		return badRequest("No file provided")
	}
	defer file.Close()

	info, err := r.docsSvc.Upload(req.Context(), header.Filename, file, header.Size)
	if err != nil {
		return err
	}
	middleware.IncrementUploads()
	return writeJSON(w, http.StatusOK, info)
}

// DELETE /api/v1/documents/{filename}
func (r *Router) handleDeleteDocument(w http.ResponseWriter, req *http.Request) error {
	raw := chi.URLParam(req, "filename")
	filename, err := url.PathUnescape(raw)
	if err != nil {
		return badRequest("Invalid filename")
	}
	if err := middleware.ValidateFilename(filename); err != nil {
		return badRequest(err.Error())
	}
	if err := r.docsSvc.Delete(req.Context(), filename); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "filename": filename})
}

// GET /api/v1/prompts
func (r *Router) handleListPrompts(w http.ResponseWriter, req *http.Request) error {
	list, err := r.promptsSvc.List(req.Context())
	if err != nil {
		return err
	}
	if list == nil {
		list = []promptdomain.Prompt{}
	}
	return writeJSON(w, http.StatusOK, promptdomain.PromptList{Prompts: list})
}

// POST /api/v1/prompts
// Body: {"text": "..."}
func (r *Router) handleCreatePrompt(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("Invalid request body")
	}
	p, err := r.promptsSvc.Create(req.Context(), body.Text)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, p)
}

// GET /api/v1/runs?document_filename=...
func (r *Router) handleListRuns(w http.ResponseWriter, req *http.Request) error {
	filename := req.URL.Query().Get("document_filename")
	if filename == "" {
		return badRequest("document_filename is required")
	}
	list, err := r.runsSvc.History(req.Context(), filename)
	if err != nil {
		return err
	}
	if list == nil {
		list = []rundomain.Run{}
	}
	return writeJSON(w, http.StatusOK, rundomain.RunList{Runs: list})
}

// POST /api/v1/analyse
// Body: {"prompt_id": "...", "document_filename": "..."}
// Execution is synchronous: the response carries the terminal run record.
func (r *Router) handleAnalyse(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		PromptID         string `json:"prompt_id"`
		DocumentFilename string `json:"document_filename"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("Invalid request body")
	}
	if body.PromptID == "" {
		return badRequest("prompt_id is required")
	}
	if body.DocumentFilename == "" {
		return badRequest("document_filename is required")
	}
	if err := middleware.ValidatePromptID(body.PromptID); err != nil {
		return badRequest(err.Error())
	}
	if err := middleware.ValidateFilename(body.DocumentFilename); err != nil {
		return badRequest(err.Error())
	}

	middleware.IncrementRuns()
	run, err := r.runsSvc.Execute(req.Context(), promptdomain.ID(body.PromptID), body.DocumentFilename)
	if err != nil {
		middleware.IncrementRunsFailed()
		return err
	}
	if run.Status == rundomain.StatusError {
		middleware.IncrementRunsFailed()
	}
	return writeJSON(w, http.StatusOK, run)
}
