package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Analyzer runs the sentiment inference service on a video. The HTTP client
// talks to the real service; the demo analyzer substitutes when none is
// configured.
type Analyzer interface {
	AnalyzeURL(ctx context.Context, youtubeURL string) (*Result, error)
	AnalyzeVideo(ctx context.Context, filename string, video io.Reader) (*Result, error)
}

// Client calls the external sentiment inference service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			// Inference downloads and processes whole videos.
			Timeout: 5 * time.Minute,
		},
	}
}

type urlRequest struct {
	YouTubeURL string `json:"youtubeUrl"`
}

// AnalyzeURL asks the service to fetch and analyze a YouTube video.
func (c *Client) AnalyzeURL(ctx context.Context, youtubeURL string) (*Result, error) {
	body, err := json.Marshal(urlRequest{YouTubeURL: youtubeURL})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// AnalyzeVideo streams an uploaded video file to the service as a multipart
// form with a single "video" part.
func (c *Client) AnalyzeVideo(ctx context.Context, filename string, video io.Reader) (*Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("video", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, video); err != nil {
		return nil, fmt.Errorf("copy video: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Result, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &result, nil
}
