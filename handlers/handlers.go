package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nijaru/yt-transcript/db"
	"github.com/nijaru/yt-transcript/middleware"
	"github.com/nijaru/yt-transcript/transcription"
	"github.com/nijaru/yt-transcript/utils"
	"github.com/nijaru/yt-transcript/validation"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	welcomeMessage = "Welcome to the YouTube Transcript API Service. " +
		"Use GET /transcript?video_url=<url> to fetch a transcript."

	detailDisabled   = "Transcripts are disabled for this video."
	detailNotFound   = "No transcript found for this video: "
	detailInternal   = "An internal server error occurred: "
	detailNotAllowed = "method not allowed"
)

type Selector interface {
	Select(ctx context.Context, videoID string) (*transcription.Result, error)
}

// Auditor records the outcome of each transcript request.
type Auditor interface {
	RecordLookup(ctx context.Context, l db.Lookup) error
}

type Handler struct {
	selector       Selector
	auditor        Auditor
	logger         logrus.FieldLogger
	requestTimeout time.Duration
	auditWarn      *rate.Sometimes
}

// NewHandler wires the HTTP surface. auditor may be nil.
func NewHandler(selector Selector, auditor Auditor, logger logrus.FieldLogger, requestTimeout time.Duration) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		selector:       selector,
		auditor:        auditor,
		logger:         logger,
		requestTimeout: requestTimeout,
		auditWarn:      &rate.Sometimes{First: 1, Interval: time.Minute},
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.Root)
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/transcript", h.Transcript)

	return middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Logging(h.logger),
		middleware.Recovery(h.logger),
	)
}

func (h *Handler) Transcript(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	if r.Method != http.MethodGet {
		utils.HandleError(w, detailNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	videoURL := r.URL.Query().Get("video_url")
	if err := validation.ValidateURL(videoURL); err != nil {
		var validationErr *validation.ValidationError
		if errors.As(err, &validationErr) && validationErr.Err != nil {
			log.WithError(validationErr.Err).WithField("video_url", videoURL).Warn("Error parsing URL")
		}
		log.WithField("video_url", videoURL).Info("Rejected transcript request")
		h.audit(r.Context(), log, db.Lookup{Outcome: transcription.KindInvalidInput.String(), Status: http.StatusBadRequest})
		utils.HandleError(w, err.Error(), http.StatusBadRequest)
		return
	}

	videoID := validation.ExtractVideoID(videoURL)
	log = log.WithField("video_id", videoID)
	log.Info("Processing transcript request")

	ctx := r.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	result, err := h.selector.Select(ctx, videoID)
	if err != nil {
		status, detail := errorResponse(err)
		h.audit(r.Context(), log, db.Lookup{
			VideoID: videoID,
			Outcome: transcription.KindOf(err).String(),
			Status:  status,
		})
		utils.HandleError(w, detail, status)
		return
	}

	h.audit(r.Context(), log, db.Lookup{
		VideoID:      videoID,
		LanguageCode: result.LanguageCode,
		Outcome:      "ok",
		Status:       http.StatusOK,
	})

	if result.Segments == nil {
		result.Segments = []transcription.Segment{}
	}
	if err := utils.WriteJSON(w, http.StatusOK, result); err != nil {
		log.WithError(err).Error("Failed to encode JSON response")
		return
	}
	log.WithField("language_code", result.LanguageCode).Info("Transcript sent")
}

// errorResponse maps a Select failure to its status code and client detail.
func errorResponse(err error) (int, string) {
	var selErr *transcription.Error
	if !errors.As(err, &selErr) {
		return http.StatusInternalServerError, detailInternal + utils.SanitizeMessage(err.Error())
	}

	status := selErr.Kind.HTTPStatus()
	switch selErr.Kind {
	case transcription.KindTranscriptsDisabled:
		return status, detailDisabled
	case transcription.KindNoTranscriptAvailable:
		return status, detailNotFound + utils.SanitizeMessage(selErr.Detail())
	default:
		return status, detailInternal + utils.SanitizeMessage(selErr.Detail())
	}
}

func (h *Handler) audit(ctx context.Context, log logrus.FieldLogger, l db.Lookup) {
	if h.auditor == nil {
		return
	}
	if err := h.auditor.RecordLookup(ctx, l); err != nil {
		h.auditWarn.Do(func() {
			log.WithError(err).Warn("Failed to record lookup")
		})
	}
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		utils.HandleError(w, "Not Found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		utils.HandleError(w, detailNotAllowed, http.StatusMethodNotAllowed)
		return
	}
	if err := utils.WriteJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage}); err != nil {
		h.requestLogger(r).WithError(err).Error("Failed to encode JSON response")
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		h.requestLogger(r).WithError(err).Error("Failed to encode JSON response")
	}
}

// requestLogger prefers the entry installed by middleware.Logging.
func (h *Handler) requestLogger(r *http.Request) logrus.FieldLogger {
	if _, ok := r.Context().Value(middleware.LoggerKey).(logrus.FieldLogger); ok {
		return middleware.GetLogger(r.Context())
	}
	return h.logger
}
