package translate

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
)

// ErrEmptyInput is returned before any remote call when there is nothing
// to translate.
var ErrEmptyInput = errors.New("empty input text")

// RetryPolicy bounds the identical-output retry. MaxAttempts counts total
// calls, so MaxAttempts=2 means at most one retry.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

type Service struct {
	client Client
	policy RetryPolicy
}

func NewService(client Client, policy RetryPolicy) *Service {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Service{
		client: client,
		policy: policy,
	}
}

// Translate returns the text in targetLang plus the source language the
// remote service detected. When the remote service echoes the input back
// unchanged (case-insensitively) it waits and retries, up to the policy
// limit. An identical result is not a reliable failure signal (proper nouns
// translate to themselves), so equal text after the last attempt is
// returned as-is.
func (s *Service) Translate(ctx context.Context, text, targetLang string) (translated, detectedSource string, err error) {
	if strings.TrimSpace(text) == "" {
		return "", "", ErrEmptyInput
	}

	var out Translation
	for attempt := 1; ; attempt++ {
		out, err = s.client.Translate(ctx, text, targetLang)
		if err != nil {
			return "", "", err
		}

		if !equalFold(out.Text, text) || attempt >= s.policy.MaxAttempts {
			break
		}

		log.Printf("[translate] output identical to input, retry %d/%d after %s",
			attempt, s.policy.MaxAttempts-1, s.policy.Backoff)

		select {
		case <-ctx.Done():
			return "", "", ctx.Err()
		case <-time.After(s.policy.Backoff):
		}
	}

	return out.Text, out.DetectedSource, nil
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
