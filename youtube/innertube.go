package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// The ANDROID client of the innertube player endpoint hands out caption URLs
// that do not need a PO token.
const (
	innertubePlayerPath = "/youtubei/v1/player?prettyPrint=false"
	androidVersion      = "20.10.38"
	androidUserAgent    = "com.google.android.youtube/" + androidVersion + " (Linux; U; Android 11) gzip"
)

type innertubeRequest struct {
	VideoID        string           `json:"videoId"`
	Context        innertubeContext `json:"context"`
	RacyCheckOk    bool             `json:"racyCheckOk"`
	ContentCheckOk bool             `json:"contentCheckOk"`
}

type innertubeContext struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
}

func (c *Client) androidPlayer(ctx context.Context, videoID string) (*playerResponse, error) {
	payload, err := json.Marshal(innertubeRequest{
		VideoID: videoID,
		Context: innertubeContext{Client: innertubeClient{
			ClientName:        "ANDROID",
			ClientVersion:     androidVersion,
			AndroidSdkVersion: 30,
		}},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding player request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+innertubePlayerPath, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "building player request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", androidUserAgent)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", androidVersion)
	req.Header.Set("Accept-Language", c.acceptLanguage)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting player")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxWatchPageSize))
	if err != nil {
		return nil, errors.Wrap(err, "reading player response")
	}
	if err := checkStatus(res.StatusCode, "innertube player"); err != nil {
		return nil, err
	}

	player := &playerResponse{}
	if err := json.Unmarshal(body, player); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling player response of %q", videoID)
	}
	return player, nil
}
