package youtube

import (
	"context"
	"encoding/xml"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/nijaru/yt-transcript/transcription"
	"github.com/pkg/errors"
)

// TranscriptList holds the caption tracks of one video. Manually created
// tracks come before generated ones, both in lookups and in iteration.
type TranscriptList struct {
	VideoID   string
	manual    []*Transcript
	generated []*Transcript
}

func (l *TranscriptList) FindTranscript(languageCode string) (transcription.Transcript, error) {
	for _, tracks := range [][]*Transcript{l.manual, l.generated} {
		for _, t := range tracks {
			if t.languageCode == languageCode {
				return t, nil
			}
		}
	}
	return nil, errors.Wrapf(transcription.ErrNoTranscriptFound, "no %q transcript for video %q", languageCode, l.VideoID)
}

func (l *TranscriptList) Iterator() transcription.TranscriptIterator {
	return &iterator{list: l}
}

func (l *TranscriptList) size() int {
	return len(l.manual) + len(l.generated)
}

type iterator struct {
	list *TranscriptList
	pos  int
}

func (it *iterator) Next() (transcription.Transcript, bool) {
	manual := len(it.list.manual)
	switch {
	case it.pos < manual:
		it.pos++
		return it.list.manual[it.pos-1], true
	case it.pos-manual < len(it.list.generated):
		it.pos++
		return it.list.generated[it.pos-1-manual], true
	}
	return nil, false
}

type Transcript struct {
	client       *Client
	videoID      string
	baseURL      string
	language     string
	languageCode string
	generated    bool
}

func (t *Transcript) Language() string     { return t.language }
func (t *Transcript) LanguageCode() string { return t.languageCode }
func (t *Transcript) IsGenerated() bool    { return t.generated }

type timedText struct {
	Entries []struct {
		Text     string  `xml:",chardata"`
		Start    float64 `xml:"start,attr"`
		Duration float64 `xml:"dur,attr"`
	} `xml:"text"`
}

var tagRE = regexp.MustCompile(`</?[^>]+>`)

// Fetch downloads the timedtext XML of the track and returns its non-empty lines.
func (t *Transcript) Fetch(ctx context.Context) ([]transcription.Segment, error) {
	trackURL := t.baseURL
	if strings.HasPrefix(trackURL, "/") {
		trackURL = t.client.baseURL + trackURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building timedtext request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", t.client.acceptLanguage)

	res, err := t.client.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting timedtext")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxTimedTextSize))
	if err != nil {
		return nil, errors.Wrap(err, "reading timedtext")
	}

	if res.StatusCode == http.StatusNotFound {
		return nil, errors.Wrapf(transcription.ErrNoTranscriptFound, "%q transcript of video %q is gone", t.languageCode, t.videoID)
	}
	if err := checkStatus(res.StatusCode, "timedtext"); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, errors.Wrapf(transcription.ErrNoTranscriptFound, "%q transcript of video %q is empty", t.languageCode, t.videoID)
	}

	doc := timedText{}
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing timedtext xml")
	}

	segments := make([]transcription.Segment, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		text := strings.TrimSpace(tagRE.ReplaceAllString(html.UnescapeString(entry.Text), ""))
		if text == "" {
			continue
		}
		segments = append(segments, transcription.Segment{
			Text:     text,
			Start:    entry.Start,
			Duration: entry.Duration,
		})
	}

	return segments, nil
}
