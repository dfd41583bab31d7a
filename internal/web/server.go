package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/product-compositor/internal/compose"
	"github.com/ironsheep/product-compositor/internal/config"
	"github.com/ironsheep/product-compositor/internal/imaging"
	"github.com/ironsheep/product-compositor/internal/layout"
)

// Multipart field names of POST /process.
const (
	FieldTemplate = "template_file"
	FieldProducts = "psd_files"
)

// memoryLimit is how much of a multipart form is held in memory before
// parts spill to temporary files.
const memoryLimit = 32 << 20

// Server serves the upload endpoint.
type Server struct {
	cfg      config.ServerConfig
	profile  config.Profile
	workers  int
	maxBytes int64
	comp     *compose.Compositor
	log      *slog.Logger
	started  time.Time
}

// FileResult reports one uploaded product.
type FileResult struct {
	Filename    string           `json:"filename"`
	Success     bool             `json:"success"`
	OutputPath  string           `json:"output_path,omitempty"`
	PreviewData string           `json:"preview_data,omitempty"`
	Warnings    []layout.Warning `json:"warnings,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// ProcessResponse is the body of a successful POST /process.
type ProcessResponse struct {
	Results []FileResult `json:"results"`
}

// ErrorResponse is the body of a rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// New creates the upload server for a validated configuration.
//
// Uploaded templates live in per-request directories, so comp should not
// cache templates.
func New(cfg *config.Config, comp *compose.Compositor, logger *slog.Logger) (*Server, error) {
	profile, err := cfg.Lookup(cfg.Server.Profile)
	if err != nil {
		return nil, fmt.Errorf("server.profile: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg.Server,
		profile:  profile,
		workers:  cfg.Batch.Workers,
		maxBytes: cfg.Server.MaxUploadMB << 20,
		comp:     comp,
		log:      logger,
		started:  time.Now(),
	}, nil
}

// Handler returns the HTTP routes, wrapped to allow cross-origin calls.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /process", s.handleProcess)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return allowCORS(mux)
}

// ListenAndServe serves on the configured address and runs the upload
// folder cleanup until ctx is done, then shuts the server down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.UploadDir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go s.RunCleanup(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info("web: listening",
		"addr", s.cfg.Addr,
		"upload_dir", s.cfg.UploadDir,
		"output_dir", s.cfg.OutputDir,
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("web: shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	})
}

// handleProcess composites every uploaded product onto the uploaded
// template with the server profile.
//
// Missing files, an unreadable template or a template without transparency
// reject the whole request with 400. Product failures are reported per
// file and never fail the request.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)

	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	templates := r.MultipartForm.File[FieldTemplate]
	products := r.MultipartForm.File[FieldProducts]
	if len(templates) == 0 || len(products) == 0 {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	if templates[0].Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}

	dir := filepath.Join(s.cfg.UploadDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.log.Error("web: failed to create request directory", "error", err)
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	defer os.RemoveAll(dir)

	templatePath, err := saveUpload(templates[0], dir, uploadName(templates[0]))
	if err != nil {
		s.log.Error("web: failed to store template", "error", err)
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	if msg := checkTemplate(templatePath); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	jobs := make([]compose.Job, len(products))
	stems := make(map[string]bool)
	for i, fh := range products {
		name := uniqueName(uploadName(fh), stems)
		path, err := saveUpload(fh, filepath.Join(dir, strconv.Itoa(i)), name)
		if err != nil {
			s.log.Error("web: failed to store product", "file", fh.Filename, "error", err)
			writeError(w, http.StatusInternalServerError, "could not store upload")
			return
		}
		jobs[i] = s.profile.Job(path, templatePath, s.cfg.OutputDir)
		jobs[i].KeepBytes = true
	}

	report := s.comp.RunBatch(r.Context(), jobs, s.workers)

	resp := ProcessResponse{Results: make([]FileResult, len(report.Outcomes))}
	for i, o := range report.Outcomes {
		fr := FileResult{Filename: uploadName(products[i]), Success: o.OK()}
		if o.OK() {
			fr.OutputPath = o.Result.OutputPath
			fr.Warnings = o.Result.Warnings
			if p := o.Result.Preview(); p != nil {
				fr.PreviewData = p.DataURI()
			}
		} else {
			fr.Error = o.Error
		}
		resp.Results[i] = fr
	}

	s.log.Info("web: processed upload",
		"files", len(products),
		"succeeded", report.Succeeded,
		"failed", report.Failed,
	)
	writeJSON(w, http.StatusOK, resp)
}

// checkTemplate returns the rejection message for an unusable template,
// or "" when it decodes and carries transparency.
func checkTemplate(path string) string {
	tpl, err := imaging.Open(path)
	if err != nil {
		return compose.Summary(compose.ErrDecode)
	}
	if tpl.Mode != imaging.ModeAlpha {
		return compose.Summary(compose.ErrInvalidTemplate)
	}
	return ""
}

// uploadName is the client's file name without any directory part.
func uploadName(fh *multipart.FileHeader) string {
	name := filepath.Base(filepath.Clean("/" + fh.Filename))
	if name == "/" || name == "." {
		return "upload"
	}
	return name
}

// uniqueName returns name, or name with a _2, _3... suffix on its stem when
// an earlier product of the request already claimed that stem. Outputs are
// named after the stem, so two products must never share one.
func uniqueName(name string, used map[string]bool) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := stem
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d", stem, n)
	}
	used[candidate] = true
	return candidate + ext
}

// saveUpload copies an uploaded file into dir as name.
func saveUpload(fh *multipart.FileHeader, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	return path, dst.Close()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
