package transcription

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/eleven-am/whisper-gateway/internal/audio"
	"github.com/eleven-am/whisper-gateway/internal/backend"
	"github.com/eleven-am/whisper-gateway/internal/dto"
	"github.com/eleven-am/whisper-gateway/internal/shared"
	"github.com/labstack/echo/v4"
)

const (
	serviceName    = "Whisper Speech-to-Text API"
	serviceVersion = "1.0.0"
)

var allowedExtensions = []string{".wav", ".mp3", ".flac", ".m4a", ".ogg", ".webm", ".mp4"}

var errUploadTooLarge = errors.New("upload too large")

type HandlerConfig struct {
	MaxUploadBytes int64
	MaxBatchItems  int
	// Model names the weights behind the active backend, for /languages.
	Model string
}

type Handler struct {
	registry *Registry
	cfg      HandlerConfig
	logger   *slog.Logger
}

func NewHandler(registry *Registry, cfg HandlerConfig, logger *slog.Logger) *Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxInputBytes
	}
	if cfg.MaxBatchItems <= 0 {
		cfg.MaxBatchItems = DefaultMaxBatchItems
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		registry: registry,
		cfg:      cfg,
		logger:   logger.With("handler", "transcription"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/", h.Info)
	g.GET("/languages", h.Languages)
	g.POST("/transcribe", h.Transcribe)
	g.POST("/transcribe-batch", h.TranscribeBatch)
	g.POST("/v1/audio/transcriptions", h.OpenAITranscriptions)
	g.GET("/ws/transcribe", h.Stream)
}

// Info godoc
// @Summary      Service information
// @Tags         transcription
// @Produce      json
// @Success      200  {object}  dto.ServiceInfoResponse
// @Router       / [get]
func (h *Handler) Info(c echo.Context) error {
	resp := dto.ServiceInfoResponse{
		Message: serviceName,
		Version: serviceVersion,
		Status:  "running",
		Docs:    "/swagger/index.html",
		Health:  "/health",
	}
	if svc, err := h.registry.Service(); err == nil {
		resp.Backend = svc.Backend()
	} else {
		resp.Status = "initializing"
	}
	return c.JSON(http.StatusOK, resp)
}

// Languages godoc
// @Summary      Supported languages
// @Description  Language codes accepted by the language form field
// @Tags         transcription
// @Produce      json
// @Success      200  {object}  dto.LanguagesResponse
// @Router       /languages [get]
func (h *Handler) Languages(c echo.Context) error {
	langs := SupportedLanguages()
	resp := dto.LanguagesResponse{
		APIProvider:        "unavailable",
		Model:              h.cfg.Model,
		SupportedLanguages: langs,
		Total:              len(langs),
	}
	if svc, err := h.registry.Service(); err == nil {
		resp.APIProvider = providerLabel(svc.Backend())
		switch svc.Backend() {
		case backend.NameRemote:
			resp.Note = "Free tier inference is rate limited"
		case backend.NameLocal:
			resp.Note = "Local transcription decodes " + strings.Join(audio.DecodableExtensions, ", ") +
				" (Vorbis only); other uploads cannot be transcribed by this backend"
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Transcribe godoc
// @Summary      Transcribe an audio file
// @Description  Backend failures such as rate limiting are returned as text with success=false
// @Tags         transcription
// @Accept       multipart/form-data
// @Produce      json
// @Param        file      formData  file    true   "Audio file (wav, mp3, flac, m4a, ogg, webm, mp4)"
// @Param        language  formData  string  false  "Language code, for example vi or en"
// @Success      200       {object}  dto.TranscriptionResponse
// @Failure      400       {object}  shared.APIError
// @Failure      413       {object}  shared.APIError
// @Failure      500       {object}  shared.APIError
// @Failure      503       {object}  shared.APIError
// @Router       /transcribe [post]
func (h *Handler) Transcribe(c echo.Context) error {
	svc, err := h.service()
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return shared.BadRequest("missing_file", "file is required")
	}
	ext, err := checkExtension(fh.Filename)
	if err != nil {
		return err
	}
	data, err := readUpload(fh, h.cfg.MaxUploadBytes)
	if err != nil {
		return h.uploadError(fh.Filename, err)
	}

	language := NormalizeLanguage(c.FormValue("language"))
	res, err := svc.Transcribe(c.Request().Context(), Request{
		Input:    FromBytes(data, ext),
		Language: language,
		Filename: fh.Filename,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return c.JSON(http.StatusOK, dto.TranscriptionResponse{
		Transcription:  res.Text,
		Filename:       fh.Filename,
		Language:       optional(language),
		ProcessingTime: roundSeconds(res.Elapsed),
		FileSize:       int64(len(data)),
		Backend:        res.Backend,
		Success:        !res.Failed(),
		FailureKind:    string(res.FailureKind),
		Degraded:       res.Degraded,
		Cached:         res.Cached,
		Timestamp:      unixSeconds(time.Now()),
	})
}

// TranscribeBatch godoc
// @Summary      Transcribe several audio files
// @Description  Files are processed in order; one failure does not affect the others
// @Tags         transcription
// @Accept       multipart/form-data
// @Produce      json
// @Param        files     formData  file    true   "Audio files (at most 5)"
// @Param        language  formData  string  false  "Language code applied to every file"
// @Success      200       {object}  dto.BatchTranscriptionResponse
// @Failure      400       {object}  shared.APIError
// @Failure      413       {object}  shared.APIError
// @Failure      500       {object}  shared.APIError
// @Failure      503       {object}  shared.APIError
// @Router       /transcribe-batch [post]
func (h *Handler) TranscribeBatch(c echo.Context) error {
	svc, err := h.service()
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return shared.BadRequest("invalid_form", "multipart form required")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return shared.BadRequest("missing_files", "at least one file is required")
	}
	if err := CheckBatchSize(len(files), h.cfg.MaxBatchItems); err != nil {
		return shared.BadRequest("too_many_files", fmt.Sprintf("at most %d files per batch", h.cfg.MaxBatchItems))
	}

	language := NormalizeLanguage(c.FormValue("language"))
	reqs := make([]Request, len(files))
	sizes := make([]int64, len(files))
	for i, fh := range files {
		ext, err := checkExtension(fh.Filename)
		if err != nil {
			return err
		}
		data, err := readUpload(fh, h.cfg.MaxUploadBytes)
		if err != nil {
			return h.uploadError(fh.Filename, err)
		}
		reqs[i] = Request{Input: FromBytes(data, ext), Language: language, Filename: fh.Filename}
		sizes[i] = int64(len(data))
	}

	start := time.Now()
	items, err := svc.TranscribeBatch(c.Request().Context(), reqs, h.cfg.MaxBatchItems)
	if err != nil {
		return h.serviceError(err)
	}
	elapsed := time.Since(start)

	results := make([]dto.BatchItemResponse, len(items))
	for i, item := range items {
		r := dto.BatchItemResponse{
			Filename: item.Filename,
			FileSize: sizes[i],
			Success:  item.Success,
		}
		msg := item.Message()
		if item.Success {
			r.Transcription = &msg
		} else {
			r.Error = &msg
		}
		results[i] = r
	}

	return c.JSON(http.StatusOK, dto.BatchTranscriptionResponse{
		Results:        results,
		TotalFiles:     len(files),
		ProcessingTime: roundSeconds(elapsed),
		Language:       optional(language),
		Timestamp:      unixSeconds(time.Now()),
	})
}

// OpenAITranscriptions godoc
// @Summary      OpenAI-compatible transcription
// @Description  Accepts the OpenAI audio transcription form. The model field is ignored.
// @Tags         openai
// @Accept       multipart/form-data
// @Produce      json
// @Param        file             formData  file    true   "Audio file"
// @Param        model            formData  string  false  "Ignored"
// @Param        language         formData  string  false  "Language code"
// @Param        response_format  formData  string  false  "json, text or verbose_json"  default(json)
// @Success      200              {object}  dto.OpenAITranscriptionResponse
// @Failure      400              {object}  shared.APIError
// @Failure      413              {object}  shared.APIError
// @Failure      429              {object}  shared.APIError
// @Failure      502              {object}  shared.APIError
// @Failure      503              {object}  shared.APIError
// @Router       /v1/audio/transcriptions [post]
func (h *Handler) OpenAITranscriptions(c echo.Context) error {
	svc, err := h.service()
	if err != nil {
		return err
	}

	format := c.FormValue("response_format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "text" && format != "verbose_json" {
		return shared.BadRequest("invalid_response_format", "response_format must be json, text or verbose_json")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return shared.BadRequest("missing_file", "file is required")
	}
	ext, err := checkExtension(fh.Filename)
	if err != nil {
		return err
	}
	data, err := readUpload(fh, h.cfg.MaxUploadBytes)
	if err != nil {
		return h.uploadError(fh.Filename, err)
	}

	language := NormalizeLanguage(c.FormValue("language"))
	res, err := svc.Transcribe(c.Request().Context(), Request{
		Input:    FromBytes(data, ext),
		Language: language,
		Filename: fh.Filename,
	})
	if err != nil {
		return h.serviceError(err)
	}
	if res.Failed() {
		return failureError(res)
	}

	switch format {
	case "text":
		return c.String(http.StatusOK, res.Text)
	case "verbose_json":
		return c.JSON(http.StatusOK, dto.OpenAIVerboseTranscriptionResponse{
			Task:     "transcribe",
			Language: language,
			Duration: clipDuration(data, ext),
			Text:     res.Text,
		})
	default:
		return c.JSON(http.StatusOK, dto.OpenAITranscriptionResponse{Text: res.Text})
	}
}

func (h *Handler) service() (*Service, error) {
	svc, err := h.registry.Service()
	if err != nil {
		return nil, shared.ServiceUnavailable("model_not_ready", "transcription model is not initialized")
	}
	return svc, nil
}

func (h *Handler) uploadError(filename string, err error) error {
	if errors.Is(err, errUploadTooLarge) {
		return shared.PayloadTooLarge("file_too_large",
			fmt.Sprintf("file %s exceeds the %dMB limit", filename, h.cfg.MaxUploadBytes/(1024*1024)))
	}
	h.logger.Error("failed to read upload", "filename", filename, "error", err)
	return shared.BadRequest("invalid_file", "could not read uploaded file")
}

func (h *Handler) serviceError(err error) error {
	switch {
	case errors.Is(err, ErrCapacityExceeded):
		return shared.PayloadTooLarge("capacity_exceeded", err.Error())
	case errors.Is(err, ErrEmptyInput):
		return shared.BadRequest("empty_file", "uploaded file is empty")
	case errors.Is(err, ErrNotReady):
		return shared.ServiceUnavailable("model_not_ready", "transcription model is not initialized")
	}
	h.logger.Error("transcription failed", "error", err)
	return shared.InternalError("transcription_failed", "failed to process audio")
}

func failureError(res *Result) error {
	status := http.StatusBadGateway
	switch res.FailureKind {
	case backend.KindRateLimited:
		status = http.StatusTooManyRequests
	case backend.KindModelLoading:
		status = http.StatusServiceUnavailable
	}
	return shared.NewAPIError(string(res.FailureKind), res.Text).ToHTTP(status)
}

func checkExtension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", shared.NewAPIError("unsupported_format",
		"unsupported file format, supported formats: "+strings.Join(allowedExtensions, ", ")).
		WithDetails(allowedExtensions).
		ToHTTP(http.StatusBadRequest)
}

func readUpload(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	if fh.Size > limit {
		return nil, errUploadTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errUploadTooLarge
	}
	return data, nil
}

func clipDuration(data []byte, ext string) float64 {
	buf, err := audio.Decode(bytes.NewReader(data), ext)
	if err != nil {
		return 0
	}
	return math.Round(buf.Duration().Seconds()*100) / 100
}

func providerLabel(name string) string {
	switch name {
	case backend.NameRemote:
		return "Hugging Face Inference API"
	case backend.NameOpenAI:
		return "OpenAI-compatible API"
	case backend.NameLocal:
		return "Local whisper.cpp"
	case backend.NameFallback:
		return "Fallback (no transcription)"
	default:
		return name
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
