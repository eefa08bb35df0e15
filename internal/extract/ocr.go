package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// DefaultOCREndpoint is the OCR.space image parsing endpoint.
const DefaultOCREndpoint = "https://api.ocr.space/parse/image"

// OCRSpaceClient calls the OCR.space API to recognize text in images.
type OCRSpaceClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// OCROption configures an OCRSpaceClient.
type OCROption func(*OCRSpaceClient)

// WithOCREndpoint overrides the API endpoint, mainly for tests.
func WithOCREndpoint(url string) OCROption {
	return func(c *OCRSpaceClient) { c.endpoint = url }
}

// WithOCRHTTPClient overrides the underlying HTTP client.
func WithOCRHTTPClient(hc *http.Client) OCROption {
	return func(c *OCRSpaceClient) { c.httpClient = hc }
}

// NewOCRSpaceClient creates a client with the given API key.
func NewOCRSpaceClient(apiKey string, opts ...OCROption) *OCRSpaceClient {
	c := &OCRSpaceClient{
		apiKey:     apiKey,
		endpoint:   DefaultOCREndpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ocrResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

// ParseImage uploads image bytes and returns the recognized text. An image
// without recognizable text yields an empty string.
func (c *OCRSpaceClient) ParseImage(ctx context.Context, filename string, content []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("apikey", c.apiKey); err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	if err := writer.WriteField("language", "eng"); err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling OCR service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OCR service returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading OCR response: %w", err)
	}

	var parsed ocrResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decoding OCR response: %w", err)
	}
	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("OCR processing failed: %s", ocrErrorText(parsed.ErrorMessage))
	}

	var sb strings.Builder
	for _, result := range parsed.ParsedResults {
		sb.WriteString(result.ParsedText)
	}
	return strings.TrimSpace(sb.String()), nil
}

// ocrErrorText flattens the ErrorMessage field, which the service returns as
// either a string or an array of strings.
func ocrErrorText(raw json.RawMessage) string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	return string(raw)
}
