// Package youtube implements transcription.Provider against youtube.com.
//
// Transcripts are discovered from the caption tracks embedded in the watch
// page player response and fetched as timedtext XML.
package youtube

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nijaru/yt-transcript/transcription"
	"github.com/pkg/errors"
)

const (
	DefaultBaseURL        = "https://www.youtube.com"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
	userAgent             = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	playerResponseMarker = "ytInitialPlayerResponse = "
	captionsMarker       = `"captions":`
	maxWatchPageSize     = 6 * 1024 * 1024
	maxTimedTextSize     = 2 * 1024 * 1024
)

var (
	ErrNotOk           = errors.New("unexpected non 200 status code")
	ErrTooManyRequests = errors.New("too many requests")
	ErrUnavailable     = errors.New("video unavailable")
	ErrConsent         = errors.New("consent form returned instead of watch page")
)

type Config struct {
	BaseURL        string
	AcceptLanguage string
	HTTPClient     *http.Client
}

type Client struct {
	baseURL        string
	acceptLanguage string
	httpClient     *http.Client
}

func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		acceptLanguage: cfg.AcceptLanguage,
		httpClient:     cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.acceptLanguage == "" {
		c.acceptLanguage = DefaultAcceptLanguage
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return c
}

type captions struct {
	PlayerCaptionsTracklistRenderer struct {
		CaptionTracks []captionTrack `json:"captionTracks"`
	} `json:"playerCaptionsTracklistRenderer"`
}

type playerResponse struct {
	Captions          *captions `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL string `json:"baseUrl"`
	Name    struct {
		SimpleText string `json:"simpleText"`
		Runs       []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"name"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

func (t captionTrack) language() string {
	if t.Name.SimpleText != "" {
		return t.Name.SimpleText
	}
	if len(t.Name.Runs) > 0 {
		return t.Name.Runs[0].Text
	}
	return t.LanguageCode
}

// needsPoToken reports whether a track URL can only be fetched by a browser.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// ListTranscripts scrapes the watch page of videoID for its caption tracks.
func (c *Client) ListTranscripts(ctx context.Context, videoID string) (transcription.TranscriptList, error) {
	body, err := c.watchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}

	player, err := parsePlayerResponse(videoID, body)
	if err != nil {
		return nil, err
	}

	if player.Captions == nil {
		if status := player.PlayabilityStatus; status != nil && status.Status != "" && status.Status != "OK" {
			return nil, errors.Wrapf(ErrUnavailable, "video %q is %s: %s", videoID, status.Status, status.Reason)
		}
		return nil, errors.Wrapf(transcription.ErrTranscriptsDisabled, "video %q has no captions", videoID)
	}

	list, gated := c.newTranscriptList(videoID, player)
	if gated > 0 {
		// Watch page URLs that need a PO token are replaced by the ANDROID
		// player's. Any failure there keeps the watch page tracks.
		if android, err := c.androidPlayer(ctx, videoID); err == nil && android.Captions != nil {
			if fallback, _ := c.newTranscriptList(videoID, android); fallback.size() > 0 {
				list = fallback
			}
		}
	}

	return list, nil
}

// newTranscriptList also reports how many tracks were dropped for needing a
// PO token.
func (c *Client) newTranscriptList(videoID string, player *playerResponse) (*TranscriptList, int) {
	list := &TranscriptList{VideoID: videoID}
	if player.Captions == nil {
		return list, 0
	}

	gated := 0
	for _, track := range player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks {
		if track.BaseURL == "" {
			continue
		}
		if needsPoToken(track.BaseURL) {
			gated++
			continue
		}
		t := &Transcript{
			client:       c,
			videoID:      videoID,
			baseURL:      track.BaseURL,
			language:     track.language(),
			languageCode: track.LanguageCode,
			generated:    track.Kind == "asr",
		}
		if t.generated {
			list.generated = append(list.generated, t)
		} else {
			list.manual = append(list.manual, t)
		}
	}
	return list, gated
}

func (c *Client) watchPage(ctx context.Context, videoID string) ([]byte, error) {
	watchURL := c.baseURL + "/watch?v=" + url.QueryEscape(videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building watch page request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", c.acceptLanguage)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting watch page")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxWatchPageSize))
	if err != nil {
		return nil, errors.Wrap(err, "reading watch page")
	}

	if err := checkStatus(res.StatusCode, "watch page"); err != nil {
		return nil, err
	}

	if strings.Contains(string(body), `action="https://consent.youtube.com/s"`) {
		return nil, ErrConsent
	}

	return body, nil
}

func parsePlayerResponse(videoID string, body []byte) (*playerResponse, error) {
	idx := strings.Index(string(body), playerResponseMarker)
	if idx < 0 {
		if strings.Contains(string(body), `class="g-recaptcha"`) {
			return nil, errors.Wrapf(ErrTooManyRequests, "video %q got captcha", videoID)
		}
		return parseCaptionsBlock(videoID, body)
	}

	raw := extractJSON(body[idx+len(playerResponseMarker):])
	if raw == nil {
		return nil, errors.Errorf("player response of %q is not a complete JSON object", videoID)
	}

	player := &playerResponse{}
	if err := json.Unmarshal(raw, player); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling player response of %q", videoID)
	}
	return player, nil
}

// parseCaptionsBlock handles pages that only carry the bare captions object.
func parseCaptionsBlock(videoID string, body []byte) (*playerResponse, error) {
	idx := strings.Index(string(body), captionsMarker)
	if idx < 0 {
		return nil, errors.Errorf("player response not found in watch page of %q", videoID)
	}

	raw := extractJSON(body[idx+len(captionsMarker):])
	if raw == nil {
		return nil, errors.Errorf("captions of %q are not a complete JSON object", videoID)
	}

	c := &captions{}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling captions of %q", videoID)
	}
	return &playerResponse{Captions: c}, nil
}

func checkStatus(code int, what string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusTooManyRequests:
		return errors.Wrapf(ErrTooManyRequests, "%s responded with status code %d", what, code)
	default:
		return errors.Wrapf(ErrNotOk, "%s responded with status code %d", what, code)
	}
}

// extractJSON returns the JSON object starting at b[0] == '{', tracking brace
// depth outside of strings.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
