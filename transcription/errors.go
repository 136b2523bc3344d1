package transcription

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindUpstreamUnexpected Kind = iota
	KindInvalidInput
	KindTranscriptsDisabled
	KindNoTranscriptAvailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindTranscriptsDisabled:
		return "transcripts_disabled"
	case KindNoTranscriptAvailable:
		return "no_transcript_available"
	default:
		return "upstream_unexpected"
	}
}

func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindTranscriptsDisabled:
		return http.StatusForbidden
	case KindNoTranscriptAvailable:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the only error type Select returns. Err holds the provider cause.
type Error struct {
	Kind    Kind
	VideoID string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: video %s: %v", e.Kind, e.VideoID, e.Err)
	}
	return fmt.Sprintf("%s: video %s", e.Kind, e.VideoID)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail is the cause message, without the kind and video prefix.
func (e *Error) Detail() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

// KindOf reports the Kind of err, KindUpstreamUnexpected when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstreamUnexpected
}

// classify maps a raw provider error into the closed taxonomy. Disabled wins
// over not found when a provider wraps both.
func classify(videoID string, err error) *Error {
	switch {
	case IsDisabled(err):
		return &Error{Kind: KindTranscriptsDisabled, VideoID: videoID, Err: err}
	case IsNotFound(err):
		return &Error{Kind: KindNoTranscriptAvailable, VideoID: videoID, Err: err}
	default:
		return &Error{Kind: KindUpstreamUnexpected, VideoID: videoID, Err: err}
	}
}
