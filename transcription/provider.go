package transcription

import (
	"context"

	"github.com/pkg/errors"
)

// Sentinels a Provider wraps to signal the two conditions the Selector
// distinguishes. Any other error is treated as an unexpected upstream failure.
var (
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	ErrNoTranscriptFound   = errors.New("no transcript found")
)

// Segment is one timed line of a fetched transcript.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript describes one available transcript of a video.
type Transcript interface {
	Language() string
	LanguageCode() string
	IsGenerated() bool
	Fetch(ctx context.Context) ([]Segment, error)
}

// TranscriptIterator walks a TranscriptList in provider order. It is finite and
// cannot be restarted.
type TranscriptIterator interface {
	Next() (Transcript, bool)
}

// TranscriptList is the set of transcripts available for one video.
type TranscriptList interface {
	// FindTranscript returns the transcript with exactly the given language
	// code, or an error wrapping ErrNoTranscriptFound.
	FindTranscript(languageCode string) (Transcript, error)
	Iterator() TranscriptIterator
}

type Provider interface {
	ListTranscripts(ctx context.Context, videoID string) (TranscriptList, error)
}

func IsDisabled(err error) bool {
	return errors.Is(err, ErrTranscriptsDisabled)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoTranscriptFound)
}
