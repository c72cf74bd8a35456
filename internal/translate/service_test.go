package translate

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClient returns canned translations in order and counts calls.
type fakeClient struct {
	calls   int
	results []Translation
	err     error
}

func (f *fakeClient) Translate(ctx context.Context, text, targetLang string) (Translation, error) {
	f.calls++
	if f.err != nil {
		return Translation{}, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	return f.results[idx], nil
}

func TestTranslate_EmptyInputSkipsRemote(t *testing.T) {
	fake := &fakeClient{results: []Translation{{Text: "whatever"}}}
	svc := NewService(fake, RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond})

	for _, input := range []string{"", "   ", "\t\n"} {
		if _, _, err := svc.Translate(context.Background(), input, "ur"); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("Translate(%q) error = %v, want ErrEmptyInput", input, err)
		}
	}
	if fake.calls != 0 {
		t.Fatalf("remote called %d times for empty input, want 0", fake.calls)
	}
}

func TestTranslate_Success(t *testing.T) {
	fake := &fakeClient{results: []Translation{{Text: "Hola mundo", DetectedSource: "en"}}}
	svc := NewService(fake, RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond})

	out, src, err := svc.Translate(context.Background(), "Hello world", "es")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if out != "Hola mundo" {
		t.Fatalf("translated = %q", out)
	}
	if src != "en" {
		t.Fatalf("detected source = %q, want en", src)
	}
	if fake.calls != 1 {
		t.Fatalf("remote calls = %d, want 1", fake.calls)
	}
}

func TestTranslate_IdenticalOutputRetriesOnce(t *testing.T) {
	fake := &fakeClient{results: []Translation{
		{Text: "Hello world"},
		{Text: "Hola mundo"},
	}}
	svc := NewService(fake, RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond})

	out, _, err := svc.Translate(context.Background(), "Hello world", "es")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if out != "Hola mundo" {
		t.Fatalf("translated = %q, want retry result", out)
	}
	if fake.calls != 2 {
		t.Fatalf("remote calls = %d, want 2", fake.calls)
	}
}

func TestTranslate_RetryBounded(t *testing.T) {
	// output stays identical; the service must stop at MaxAttempts and
	// return the equal text rather than looping
	fake := &fakeClient{results: []Translation{{Text: "Berlin"}}}
	svc := NewService(fake, RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond})

	out, _, err := svc.Translate(context.Background(), "Berlin", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if out != "Berlin" {
		t.Fatalf("translated = %q", out)
	}
	if fake.calls != 3 {
		t.Fatalf("remote calls = %d, want 3", fake.calls)
	}
}

func TestTranslate_IdenticalComparisonIsCaseInsensitive(t *testing.T) {
	fake := &fakeClient{results: []Translation{
		{Text: "HELLO WORLD"},
		{Text: "Hola mundo"},
	}}
	svc := NewService(fake, RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond})

	out, _, err := svc.Translate(context.Background(), "hello world", "es")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if out != "Hola mundo" {
		t.Fatalf("translated = %q, want case-insensitive match to trigger retry", out)
	}
	if fake.calls != 2 {
		t.Fatalf("remote calls = %d, want 2", fake.calls)
	}
}

func TestTranslate_ClientErrorPropagates(t *testing.T) {
	wantErr := errors.New("boom")
	fake := &fakeClient{err: wantErr}
	svc := NewService(fake, RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond})

	if _, _, err := svc.Translate(context.Background(), "Hello", "es"); !errors.Is(err, wantErr) {
		t.Fatalf("Translate() error = %v, want %v", err, wantErr)
	}
	if fake.calls != 1 {
		t.Fatalf("remote calls = %d, want 1 (no retry on transport error)", fake.calls)
	}
}

func TestTranslate_ContextCancelledDuringBackoff(t *testing.T) {
	fake := &fakeClient{results: []Translation{{Text: "Berlin"}}}
	svc := NewService(fake, RetryPolicy{MaxAttempts: 2, Backoff: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if _, _, err := svc.Translate(ctx, "Berlin", "en"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Translate() error = %v, want context.Canceled", err)
	}
}

func TestParseGtxResponse(t *testing.T) {
	body := []byte(`[[["Hola ","Hello ",null,null,10],["mundo","world",null,null,10]],null,"en"]`)

	out, err := parseGtxResponse(body)
	if err != nil {
		t.Fatalf("parseGtxResponse() error = %v", err)
	}
	if out.Text != "Hola mundo" {
		t.Fatalf("text = %q", out.Text)
	}
	if out.DetectedSource != "en" {
		t.Fatalf("detected source = %q", out.DetectedSource)
	}
}

func TestParseGtxResponse_Malformed(t *testing.T) {
	for _, body := range []string{`{"not":"an array"}`, `[]`, `[null]`} {
		if _, err := parseGtxResponse([]byte(body)); err == nil {
			t.Fatalf("parseGtxResponse(%s) expected error", body)
		}
	}
}
