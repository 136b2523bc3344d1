package validation

import (
	"net/url"
	"strings"
)

const (
	ErrMissingURL   = "video_url query parameter is required"
	ErrNoIdentifier = "could not extract a valid identifier"
)

type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var (
	watchHosts = map[string]bool{
		"youtube.com":     true,
		"www.youtube.com": true,
	}
	pathPrefixes = []string{"/embed/", "/v/"}
)

const (
	shortHost = "youtu.be"
	watchPath = "/watch"
)

// ExtractVideoID returns the video identifier carried by rawURL, or "" when
// rawURL is empty, unparseable, or not a recognized YouTube URL shape.
// It never touches the network.
func ExtractVideoID(rawURL string) string {
	id, _ := extract(rawURL)
	return id
}

// ValidateURL reports why rawURL carries no video identifier, as a
// *ValidationError whose Message is safe to show to clients.
func ValidateURL(rawURL string) error {
	_, err := parseVideoURL(rawURL)
	return err
}

func parseVideoURL(rawURL string) (string, error) {
	id, err := extract(rawURL)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", &ValidationError{Message: ErrNoIdentifier}
	}
	return id, nil
}

func extract(rawURL string) (string, error) {
	// A blank but present value is a bad URL, not a missing one.
	if rawURL == "" {
		return "", &ValidationError{Message: ErrMissingURL}
	}
	rawURL = strings.TrimSpace(rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", &ValidationError{Message: ErrNoIdentifier, Err: err}
	}

	host := strings.ToLower(parsedURL.Hostname())
	switch {
	case watchHosts[host]:
		if parsedURL.Path == watchPath {
			return parsedURL.Query().Get("v"), nil
		}
		for _, prefix := range pathPrefixes {
			if strings.HasPrefix(parsedURL.Path, prefix) {
				return pathSegment(strings.TrimPrefix(parsedURL.Path, prefix)), nil
			}
		}
		return "", nil
	case host == shortHost:
		return strings.TrimPrefix(parsedURL.Path, "/"), nil
	}

	return "", nil
}

// pathSegment returns the first segment of rest, "" when there is none.
func pathSegment(rest string) string {
	segment, _, _ := strings.Cut(rest, "/")
	return segment
}
