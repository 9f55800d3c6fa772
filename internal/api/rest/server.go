package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	app "ai-inspector/internal/application"
	"ai-inspector/internal/domain/entity"
)

const maxUploadSize = 32 << 20

// Inspector проверяет изображения и сообщает состояние подсистемы.
type Inspector interface {
	Inspect(ctx context.Context, imagePath string) (*entity.InspectionResult, error)
	Status() entity.Status
}

var (
	errPathInspectionOff = errors.New("path inspection is disabled, use /inspect/upload")
	errOutsideBaseDir    = errors.New("path is outside the image directory")
)

type Handler struct {
	inspector Inspector
	baseDir   string
	logger    logrus.FieldLogger
}

// NewHandler создаёт обработчики REST API. POST /inspect читает файлы только
// внутри baseDir; пустой baseDir отключает его.
func NewHandler(inspector Inspector, baseDir string, logger logrus.FieldLogger) *Handler {
	return &Handler{inspector: inspector, baseDir: baseDir, logger: logger}
}

// Routes собирает роутер REST API.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Post("/inspect", h.inspectPath)
	r.Post("/inspect/upload", h.inspectUpload)
	return r
}

type inspectRequest struct {
	Path string `json:"path"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Reason  string `json:"reason,omitempty"`
}

type resultResponse struct {
	Path       string  `json:"path,omitempty"`
	Label      string  `json:"label"`
	Display    string  `json:"display"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Backend    string  `json:"backend"`
	Error      bool    `json:"error"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	status := h.inspector.Status()
	if !status.IsReady() {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, healthResponse{
		Status:  string(status.State),
		Backend: status.Backend.String(),
		Reason:  status.Reason,
	})
}

func (h *Handler) inspectPath(w http.ResponseWriter, r *http.Request) {
	var req inspectRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		h.fail(w, r, http.StatusBadRequest, "path is required")
		return
	}

	path, err := h.resolvePath(req.Path)
	if err != nil {
		h.logger.WithField("path", req.Path).Warn(err.Error())
		h.fail(w, r, http.StatusForbidden, err.Error())
		return
	}
	h.inspect(w, r, path, req.Path)
}

// resolvePath переводит путь клиента в путь внутри baseDir. Относительные пути
// считаются от baseDir, символические ссылки раскрываются до проверки.
func (h *Handler) resolvePath(p string) (string, error) {
	if h.baseDir == "" {
		return "", errPathInspectionOff
	}
	base, err := filepath.Abs(h.baseDir)
	if err != nil {
		return "", fmt.Errorf("image directory: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(base); err == nil {
		base = resolved
	}

	full := p
	if !filepath.IsAbs(full) {
		full = filepath.Join(base, full)
	}
	full = filepath.Clean(full)
	if resolved, err := filepath.EvalSymlinks(full); err == nil {
		full = resolved
	}

	rel, err := filepath.Rel(base, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errOutsideBaseDir
	}
	return full, nil
}

func (h *Handler) inspectUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("image")
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "multipart field \"image\" is required")
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		h.logger.WithError(err).Error("create upload file")
		h.fail(w, r, http.StatusInternalServerError, "cannot store upload")
		return
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, file)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		h.logger.WithError(err).Error("store upload")
		h.fail(w, r, http.StatusInternalServerError, "cannot store upload")
		return
	}

	h.inspect(w, r, tmp.Name(), "")
}

// inspect запускает инспекцию; reportedPath попадает в ответ вместо временного пути.
func (h *Handler) inspect(w http.ResponseWriter, r *http.Request, path, reportedPath string) {
	res, err := h.inspector.Inspect(r.Context(), path)
	if err != nil {
		if errors.Is(err, app.ErrInspectionDisabled) {
			h.fail(w, r, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.logger.WithError(err).WithField("path", path).Error("inspection failed")
		h.fail(w, r, http.StatusInternalServerError, "inspection failed")
		return
	}

	render.JSON(w, r, resultResponse{
		Path:       reportedPath,
		Label:      res.Label,
		Display:    res.DisplayName,
		Category:   res.CategoryCode,
		Confidence: res.ConfidencePercent(),
		Backend:    res.Backend.String(),
		Error:      res.IsError(),
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, code int, msg string) {
	render.Status(r, code)
	render.JSON(w, r, errorResponse{Error: msg})
}

func requestLogger(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.WithFields(logrus.Fields{
					"method":     r.Method,
					"uri":        r.RequestURI,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start),
					"request_id": middleware.GetReqID(r.Context()),
				}).Debug("http request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// NewServer создаёт HTTP-сервер REST API.
func NewServer(addr string, handler *Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
