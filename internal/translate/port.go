package translate

import "context"

// Translation is one remote translation result. DetectedSource is the
// source language the remote service settled on, when it reports one.
type Translation struct {
	Text           string
	DetectedSource string
}

type Client interface {
	Translate(ctx context.Context, text, targetLang string) (Translation, error)
}
