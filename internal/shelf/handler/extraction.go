package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/service"
	"github.com/trackshelf/trackshelf-backend/pkg/errors"
	"github.com/trackshelf/trackshelf-backend/pkg/httputil"
	"github.com/trackshelf/trackshelf-backend/pkg/logger"
)

// defaultMaxUpload applies when no upload limit is configured
const defaultMaxUpload = 15 << 20

// ExtractionHandler turns text, speech and photos into item drafts
type ExtractionHandler struct {
	service   *service.ExtractionService
	validator *httputil.Validator
	maxUpload int64
	logger    *logger.Logger
}

// NewExtractionHandler creates a new extraction handler. maxUpload caps the
// audio and image uploads in bytes.
func NewExtractionHandler(svc *service.ExtractionService, catalog *domain.Catalog, maxUpload int64, log *logger.Logger) *ExtractionHandler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &ExtractionHandler{
		service:   svc,
		validator: newValidator(catalog),
		maxUpload: maxUpload,
		logger:    log,
	}
}

// Text extracts one item from free text
func (h *ExtractionHandler) Text(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	res, err := h.service.ParseText(r.Context(), req.Text)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, res)
}

// Speech transcribes the multipart field "file" and extracts one item
func (h *ExtractionHandler) Speech(w http.ResponseWriter, r *http.Request) {
	audio, header, err := readUpload(w, r, "file", h.maxUpload)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	res, err := h.service.Transcribe(r.Context(), audio, header.Filename)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, res)
}

// Image extracts every visible product from the multipart field "image"
func (h *ExtractionHandler) Image(w http.ResponseWriter, r *http.Request) {
	image, header, err := readUpload(w, r, "image", h.maxUpload)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	mime := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(image)
	}
	if !strings.HasPrefix(mime, "image/") {
		httputil.Error(w, r, errors.BadRequest("upload is not an image"))
		return
	}

	res, err := h.service.AnalyzeImage(r.Context(), image, mime)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, res)
}

func readUpload(w http.ResponseWriter, r *http.Request, field string, limit int64) ([]byte, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, nil, errors.BadRequest("invalid multipart upload").WithCause(err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, errors.BadRequest(field + " is required").WithCause(err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, nil, errors.BadRequest("could not read upload").WithCause(err)
	}
	if int64(len(data)) > limit {
		return nil, nil, errors.BadRequest(field + " is too large")
	}
	return data, header, nil
}
