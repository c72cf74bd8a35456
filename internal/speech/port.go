package speech

import "context"

type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error) // текст → mp3 bytes
}
