package uploads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the image storage collaborator. The collaborator owns
// the binary upload; this service only ever sees the stable URL and the
// natural dimensions of a finished upload.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Resolver interface {
	ResolveUpload(ctx context.Context, uploadID string) (*UploadedImage, error)
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type UploadedImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ResolveUpload exchanges an upload id for the stored image's URL and
// dimensions.
func (c *Client) ResolveUpload(ctx context.Context, uploadID string) (*UploadedImage, error) {
	url := fmt.Sprintf(
		"%s/internal/uploads/%s",
		c.baseURL,
		uploadID,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf(
			"upload service error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	var payload UploadedImage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return &payload, nil
}
