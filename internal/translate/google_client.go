package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const googleEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleClient talks to the public gtx translation endpoint with source
// auto-detection. No API key, no batching, no glossary.
type GoogleClient struct {
	endpoint string
	client   *http.Client
}

func NewGoogleClient() *GoogleClient {
	return &GoogleClient{
		endpoint: googleEndpoint,
		client:   &http.Client{},
	}
}

func (c *GoogleClient) Translate(ctx context.Context, text, targetLang string) (Translation, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Translation{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Translation{}, fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		return Translation{}, fmt.Errorf("translate error: status %d: %s", resp.StatusCode, body)
	}

	return parseGtxResponse(body)
}

// parseGtxResponse decodes the undocumented gtx array payload:
// [[["translated","original",...],...],null,"detected-lang",...]
func parseGtxResponse(body []byte) (Translation, error) {
	var payload []interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Translation{}, fmt.Errorf("decode translate response: %w", err)
	}
	if len(payload) == 0 {
		return Translation{}, fmt.Errorf("empty translate response")
	}

	segments, ok := payload[0].([]interface{})
	if !ok {
		return Translation{}, fmt.Errorf("unexpected translate response shape")
	}

	var sb strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]interface{})
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			sb.WriteString(s)
		}
	}

	out := Translation{Text: sb.String()}
	if len(payload) > 2 {
		if src, ok := payload[2].(string); ok {
			out.DetectedSource = src
		}
	}

	if out.Text == "" {
		return Translation{}, fmt.Errorf("empty translation")
	}
	return out, nil
}
