package transcription

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var DefaultLanguages = []string{"en", "es", "fr", "de"}

// Result is a selected transcript together with its fetched segments.
type Result struct {
	VideoID      string    `json:"video_id"`
	Language     string    `json:"language"`
	LanguageCode string    `json:"language_code"`
	IsGenerated  bool      `json:"is_generated"`
	Segments     []Segment `json:"transcript"`
}

// Selector picks one transcript per video: the first code of Languages the
// video has, otherwise the first transcript in provider order.
type Selector struct {
	Provider  Provider
	Languages []string
	Logger    logrus.FieldLogger
}

func NewSelector(provider Provider, languages []string, logger logrus.FieldLogger) *Selector {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Selector{
		Provider:  provider,
		Languages: languages,
		Logger:    logger,
	}
}

// Select lists the transcripts of videoID once, picks one and fetches it.
// Every returned error is an *Error.
func (s *Selector) Select(ctx context.Context, videoID string) (*Result, error) {
	log := s.Logger.WithField("video_id", videoID)

	list, err := s.Provider.ListTranscripts(ctx, videoID)
	if err != nil {
		return nil, s.fail(log, classify(videoID, errors.Wrap(err, "listing transcripts")))
	}

	transcript, err := s.pick(log, list)
	if err != nil {
		return nil, s.fail(log, classify(videoID, err))
	}
	if transcript == nil {
		return nil, s.fail(log, &Error{
			Kind:    KindNoTranscriptAvailable,
			VideoID: videoID,
			Err:     errors.Wrap(ErrNoTranscriptFound, "no transcripts were found for this video"),
		})
	}

	segments, err := transcript.Fetch(ctx)
	if err != nil {
		return nil, s.fail(log, classify(videoID, errors.Wrapf(err, "fetching %s transcript", transcript.LanguageCode())))
	}

	log.WithFields(logrus.Fields{
		"language_code": transcript.LanguageCode(),
		"is_generated":  transcript.IsGenerated(),
		"segments":      len(segments),
	}).Info("Fetched transcript")

	return &Result{
		VideoID:      videoID,
		Language:     transcript.Language(),
		LanguageCode: transcript.LanguageCode(),
		IsGenerated:  transcript.IsGenerated(),
		Segments:     segments,
	}, nil
}

// pick returns nil, nil when the list is empty.
func (s *Selector) pick(log logrus.FieldLogger, list TranscriptList) (Transcript, error) {
	for _, code := range s.Languages {
		transcript, err := list.FindTranscript(code)
		if err == nil {
			log.WithField("language_code", code).Info("Found prioritized transcript")
			return transcript, nil
		}
		if !IsNotFound(err) {
			return nil, errors.Wrapf(err, "looking up %s transcript", code)
		}
	}

	log.Warn("No prioritized transcript found, falling back to the first available transcript")
	transcript, ok := list.Iterator().Next()
	if !ok {
		return nil, nil
	}
	return transcript, nil
}

func (s *Selector) fail(log logrus.FieldLogger, err *Error) *Error {
	entry := log.WithError(err.Err).WithField("kind", err.Kind.String())
	switch err.Kind {
	case KindTranscriptsDisabled:
		entry.Warn("Transcripts are disabled")
	case KindNoTranscriptAvailable:
		entry.Warn("No transcript found")
	default:
		entry.Error("Unexpected transcript provider error")
	}
	return err
}
