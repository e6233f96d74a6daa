// Package vision wraps the hosted Roboflow inference endpoints the app
// depends on: one classification model that labels a trash photo and one
// detection model used as a presence check on the cleanup-proof photo.
// Both are one-shot request/response calls with no retry; callers decide
// what a failure means.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/telbinapp/telbin-backend/internal/config"
)

var ErrNoPrediction = errors.New("no prediction returned")

// Prediction is the highest-confidence label for a classified image.
type Prediction struct {
	Class      string
	Confidence float64
}

type Client struct {
	httpClient  *http.Client
	apiKey      string
	classifyURL string
	detectURL   string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.VisionTimeout},
		apiKey:      cfg.RoboflowAPIKey,
		classifyURL: strings.TrimSuffix(cfg.ClassifyURL, "/") + "/" + cfg.ClassifyModel,
		detectURL:   strings.TrimSuffix(cfg.DetectURL, "/") + "/" + cfg.DetectModel,
	}
}

type classifyResponse struct {
	PredictedClasses []string `json:"predicted_classes"`
	Predictions      map[string]struct {
		Confidence float64 `json:"confidence"`
	} `json:"predictions"`
}

type detectResponse struct {
	Predictions []struct {
		Class      string  `json:"class"`
		Confidence float64 `json:"confidence"`
	} `json:"predictions"`
}

// Classify labels the image and returns the top predicted class with its
// confidence. The label is lowercased; mapping onto the app's allowed
// class set is the caller's concern.
func (c *Client) Classify(ctx context.Context, image []byte) (*Prediction, error) {
	body, err := c.post(ctx, c.classifyURL, image)
	if err != nil {
		return nil, err
	}

	var resp classifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode classification response: %w", err)
	}
	if len(resp.PredictedClasses) == 0 {
		return nil, ErrNoPrediction
	}

	top := resp.PredictedClasses[0]
	confidence := 0.0
	if p, ok := resp.Predictions[top]; ok {
		confidence = p.Confidence
	}

	return &Prediction{
		Class:      strings.ToLower(top),
		Confidence: confidence,
	}, nil
}

// Detect returns how many objects the detection model found in the image.
// The intake flow only cares whether the count is at least one.
func (c *Client) Detect(ctx context.Context, image []byte) (int, error) {
	body, err := c.post(ctx, c.detectURL, image)
	if err != nil {
		return 0, err
	}

	var resp detectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("failed to decode detection response: %w", err)
	}

	return len(resp.Predictions), nil
}

func (c *Client) post(ctx context.Context, endpoint string, image []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "capture.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	reqURL := endpoint + "?api_key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("vision endpoint returned status %d: %s", resp.StatusCode, string(b))
	}

	return io.ReadAll(resp.Body)
}
