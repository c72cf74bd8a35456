package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	gttsEndpoint = "https://translate.google.com/translate_tts"

	// the endpoint rejects long q= values, so text is synthesized in chunks
	gttsMaxChunk = 200
)

// GTTSClient synthesizes speech through the Google translate TTS endpoint.
// MP3 frames from consecutive chunks are concatenated, which players accept.
type GTTSClient struct {
	endpoint string
	client   *http.Client
}

func NewGTTSClient() *GTTSClient {
	return &GTTSClient{
		endpoint: gttsEndpoint,
		client:   &http.Client{},
	}
}

func (c *GTTSClient) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	var out bytes.Buffer
	for _, chunk := range splitChunks(text, gttsMaxChunk) {
		data, err := c.fetchChunk(ctx, chunk, lang)
		if err != nil {
			return nil, err
		}
		out.Write(data)
	}

	if out.Len() == 0 {
		return nil, fmt.Errorf("tts produced no audio")
	}
	return out.Bytes(), nil
}

func (c *GTTSClient) fetchChunk(ctx context.Context, text, lang string) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("tts error: status %d: %s", resp.StatusCode, body)
	}

	return body, nil
}

// splitChunks breaks text on whitespace into pieces of at most max runes.
// A single word longer than max becomes its own chunk.
func splitChunks(text string, max int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var cur strings.Builder
	for _, w := range words {
		if cur.Len() > 0 && utf8.RuneCountInString(cur.String())+1+utf8.RuneCountInString(w) > max {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
