// Package ocr extracts text from receipt images through an external
// OCR service.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrTransport covers failures before a service verdict: dial, TLS,
	// timeouts, non-2xx statuses, unreadable bodies.
	ErrTransport = errors.New("ocr transport error")
	// ErrService means the service answered and reported a processing error.
	ErrService = errors.New("ocr service error")
	// ErrEmpty means the service answered successfully but found no text.
	ErrEmpty = errors.New("ocr returned no text")
)

// TextExtractor is the outbound port for text extraction. The production
// implementation is Client; tests substitute fakes.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, format string) (string, error)
}

// Client performs one synchronous multipart POST per extraction. No retry;
// a failed call maps directly to an error and retry policy stays with the
// caller.
type Client struct {
	endpoint string
	apiKey   string
	language string
	http     *http.Client
}

var _ TextExtractor = (*Client)(nil)

func NewClient(endpoint, apiKey, language string) *Client {
	if language == "" {
		language = "eng"
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		language: language,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

// parseResponse mirrors the service wire format: an error flag plus
// messages, or a list of parsed results carrying text.
type parseResponse struct {
	IsErroredOnProcessing bool           `json:"IsErroredOnProcessing"`
	ErrorMessage          errorMessage   `json:"ErrorMessage"`
	ParsedResults         []parsedResult `json:"ParsedResults"`
}

type parsedResult struct {
	ParsedText string `json:"ParsedText"`
}

// errorMessage tolerates both a bare string and a list of strings, which
// the service emits interchangeably.
type errorMessage []string

func (m *errorMessage) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*m = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*m = []string{one}
	return nil
}

func (c *Client) ExtractText(ctx context.Context, data []byte, format string) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", "receipt."+format)
	if err != nil {
		return "", fmt.Errorf("%w: building form: %v", ErrTransport, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: building form: %v", ErrTransport, err)
	}
	_ = form.WriteField("apikey", c.apiKey)
	_ = form.WriteField("language", c.language)
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("%w: building form: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	var parsed parseResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrTransport, err)
	}

	if parsed.IsErroredOnProcessing {
		msg := strings.Join(parsed.ErrorMessage, "; ")
		if msg == "" {
			msg = "unspecified processing error"
		}
		return "", fmt.Errorf("%w: %s", ErrService, msg)
	}

	var text strings.Builder
	for _, r := range parsed.ParsedResults {
		text.WriteString(r.ParsedText)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", ErrEmpty
	}
	return text.String(), nil
}
