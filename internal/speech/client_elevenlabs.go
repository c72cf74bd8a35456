package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// multilingual voices; Rachel is the stock default
var elevenVoiceByLang = map[string]string{
	"en": "21m00Tcm4TlvDq8ikWAM",
	"fr": "EXAVITQu4vr4xnSDxMaL",
	"es": "EXAVITQu4vr4xnSDxMaL",
	"de": "EXAVITQu4vr4xnSDxMaL",
	"ar": "pNInz6obpgDQGcFmaJgB",
	"ur": "pNInz6obpgDQGcFmaJgB",
}

const elevenDefaultVoice = "21m00Tcm4TlvDq8ikWAM"

type ElevenLabsClient struct {
	apiKey string
}

func NewElevenLabsClient(apiKey string) *ElevenLabsClient {
	return &ElevenLabsClient{apiKey: apiKey}
}

// TEXT → SPEECH
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	voiceID, ok := elevenVoiceByLang[lang]
	if !ok {
		voiceID = elevenDefaultVoice
	}

	url := fmt.Sprintf("https://api.elevenlabs.io/v1/text-to-speech/%s", voiceID)

	payload := []byte(fmt.Sprintf(`{"text": %q, "model_id": "eleven_multilingual_v2"}`, text))

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tts failed: %s", string(b))
	}

	return io.ReadAll(resp.Body)
}
