package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Vovarama1992/voice_translator/internal/notifier"
	"github.com/Vovarama1992/voice_translator/internal/ports"
)

type fakeSTT struct {
	text  string
	err   error
	calls int
}

func (f *fakeSTT) Transcribe(ctx context.Context, filePath string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeDetector struct {
	lang string
}

func (f *fakeDetector) Detect(text string) string { return f.lang }

type fakeTranslator struct {
	out        string
	src        string
	err        error
	calls      int
	lastTarget string
}

func (f *fakeTranslator) Translate(ctx context.Context, text, targetLang string) (string, string, error) {
	f.calls++
	f.lastTarget = targetLang
	if f.err != nil {
		return "", "", f.err
	}
	return f.out, f.src, nil
}

type fakeSynth struct {
	dir   string
	err   error
	calls int
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, lang string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(f.dir, "out.mp3")
	if err := os.WriteFile(path, []byte("mp3"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeRepo struct {
	runs []ports.PipelineRun
}

func (f *fakeRepo) Create(ctx context.Context, run ports.PipelineRun) error {
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRepo) ListRecent(ctx context.Context, limit int) ([]ports.PipelineRun, error) {
	return f.runs, nil
}

type fakeNotifier struct {
	calls   int
	lastErr error
}

func (f *fakeNotifier) Notify(ctx context.Context, err error, details string) error {
	f.calls++
	f.lastErr = err
	return nil
}

func defaultAuto() AutoResolve {
	return AutoResolve{Source: "en", Target: "ur", Fallback: "en"}
}

func newTestService(t *testing.T, stt *fakeSTT, det *fakeDetector, tr *fakeTranslator, repo *fakeRepo, nf *fakeNotifier) (*Service, *fakeSynth) {
	t.Helper()
	synth := &fakeSynth{dir: t.TempDir()}
	var runs ports.RunRepo
	if repo != nil {
		runs = repo
	}
	var alerts notifier.Notificator
	if nf != nil {
		alerts = nf
	}
	svc := NewService(stt, det, tr, synth, runs, nil, alerts, defaultAuto(), time.Second)
	return svc, synth
}

func TestResolveTarget(t *testing.T) {
	svc, _ := newTestService(t, &fakeSTT{}, &fakeDetector{}, &fakeTranslator{}, nil, nil)

	cases := []struct {
		hint     string
		detected string
		want     string
	}{
		{"auto", "en", "ur"},
		{"auto", "fr", "en"},
		{"auto", "ur", "en"},
		{"auto", "unknown", "en"},
		{"de", "en", "de"},
		{"es", "es", "es"},
	}
	for _, tc := range cases {
		if got := svc.resolveTarget(tc.hint, tc.detected); got != tc.want {
			t.Errorf("resolveTarget(%q, %q) = %q, want %q", tc.hint, tc.detected, got, tc.want)
		}
	}
}

func TestRun_NoAudioInput(t *testing.T) {
	stt := &fakeSTT{text: "never"}
	svc, _ := newTestService(t, stt, &fakeDetector{lang: "en"}, &fakeTranslator{}, nil, nil)

	res := svc.Run(context.Background(), "", "auto")
	if res.Failure == nil || res.Failure.Stage != StageTranscription {
		t.Fatalf("Failure = %v, want transcription stage", res.Failure)
	}
	if !errors.Is(res.Failure, ErrNoAudio) {
		t.Fatalf("Failure err = %v, want ErrNoAudio", res.Failure.Err)
	}
	if stt.calls != 0 {
		t.Fatalf("transcriber called %d times for empty input", stt.calls)
	}
}

func TestRun_TranscriptionFailureShortCircuits(t *testing.T) {
	wantErr := errors.New("whisper down")
	stt := &fakeSTT{err: wantErr}
	tr := &fakeTranslator{out: "x"}
	repo := &fakeRepo{}
	nf := &fakeNotifier{}
	svc, synth := newTestService(t, stt, &fakeDetector{lang: "en"}, tr, repo, nf)

	res := svc.Run(context.Background(), "/tmp/in.wav", "auto")

	if res.Failure == nil || res.Failure.Stage != StageTranscription {
		t.Fatalf("Failure = %v, want transcription stage", res.Failure)
	}
	if !errors.Is(res.Failure, wantErr) {
		t.Fatalf("Failure err = %v, want original error unmodified", res.Failure.Err)
	}
	if res.Transcript != "" || res.DetectedLang != "" || res.TranslatedText != "" || res.AudioPath != "" {
		t.Fatalf("later fields must stay empty, got %+v", res)
	}
	if tr.calls != 0 || synth.calls != 0 {
		t.Fatal("later stages must not run after transcription failure")
	}
	if nf.calls != 1 {
		t.Fatalf("notifier calls = %d, want 1", nf.calls)
	}
	if len(repo.runs) != 1 || repo.runs[0].Status != "failed" || repo.runs[0].FailedStage != "transcription" {
		t.Fatalf("stored run = %+v", repo.runs)
	}
}

func TestRun_SkipsTranslationWhenTargetEqualsDetected(t *testing.T) {
	tr := &fakeTranslator{out: "should not be used"}
	svc, _ := newTestService(t, &fakeSTT{text: "Hello world"}, &fakeDetector{lang: "en"}, tr, nil, nil)

	res := svc.Run(context.Background(), "/tmp/in.wav", "en")

	if tr.calls != 0 {
		t.Fatalf("translator called %d times on skip path, want 0", tr.calls)
	}
	if res.TranslatedText != "Hello world" {
		t.Fatalf("translated = %q, want transcript passed through", res.TranslatedText)
	}
	if res.Failure != nil {
		t.Fatalf("unexpected failure: %v", res.Failure)
	}
}

func TestRun_TranslationFailureKeepsTranscript(t *testing.T) {
	wantErr := errors.New("translate 503")
	tr := &fakeTranslator{err: wantErr}
	svc, synth := newTestService(t, &fakeSTT{text: "Hello world"}, &fakeDetector{lang: "en"}, tr, nil, nil)

	res := svc.Run(context.Background(), "/tmp/in.wav", "auto")

	if res.Failure == nil || res.Failure.Stage != StageTranslation {
		t.Fatalf("Failure = %v, want translation stage", res.Failure)
	}
	if res.Transcript != "Hello world" || res.DetectedLang != "en" {
		t.Fatalf("earlier fields must survive, got %+v", res)
	}
	if res.TranslatedText != "" || res.AudioPath != "" {
		t.Fatalf("later fields must stay empty, got %+v", res)
	}
	if synth.calls != 0 {
		t.Fatal("synthesizer must not run after translation failure")
	}
}

func TestRun_SynthesisFailureKeepsTextFields(t *testing.T) {
	stt := &fakeSTT{text: "Hello world"}
	tr := &fakeTranslator{out: "ہیلو دنیا"}
	repo := &fakeRepo{}
	synth := &fakeSynth{dir: t.TempDir(), err: errors.New("tts quota exceeded")}
	svc := NewService(stt, &fakeDetector{lang: "en"}, tr, synth, repo, nil, nil, defaultAuto(), time.Second)

	res := svc.Run(context.Background(), "/tmp/in.wav", "auto")

	if res.Failure == nil || res.Failure.Stage != StageSynthesis {
		t.Fatalf("Failure = %v, want synthesis stage", res.Failure)
	}
	if res.Transcript != "Hello world" || res.TranslatedText != "ہیلو دنیا" {
		t.Fatalf("text fields must survive synthesis failure, got %+v", res)
	}
	if res.AudioPath != "" {
		t.Fatalf("audio path = %q, want empty", res.AudioPath)
	}
	// the synthesis error text lives only in Failure, never in the data fields
	for _, field := range []string{res.Transcript, res.TranslatedText, res.DetectedLang, res.AudioPath} {
		if strings.Contains(field, "tts quota exceeded") {
			t.Fatalf("synthesis error leaked into data field %q", field)
		}
	}
	if len(repo.runs) != 1 || repo.runs[0].FailedStage != "synthesis" {
		t.Fatalf("stored run = %+v", repo.runs)
	}
}

func TestRun_RemoteSourceMismatchDoesNotOverrideDetection(t *testing.T) {
	// the remote translator disagreeing with local detection is logged,
	// never applied: resolution happened before the translate call
	tr := &fakeTranslator{out: "Hallo Welt", src: "fr"}
	svc, _ := newTestService(t, &fakeSTT{text: "Hello world"}, &fakeDetector{lang: "en"}, tr, nil, nil)

	res := svc.Run(context.Background(), "/tmp/in.wav", "de")

	if res.Failure != nil {
		t.Fatalf("unexpected failure: %v", res.Failure)
	}
	if res.DetectedLang != "en" {
		t.Fatalf("detected = %q, remote opinion must not override it", res.DetectedLang)
	}
	if res.ResolvedTarget != "de" || res.TranslatedText != "Hallo Welt" {
		t.Fatalf("result = %+v", res)
	}
}

func TestRun_EndToEndAutoEnglishToUrdu(t *testing.T) {
	stt := &fakeSTT{text: "Hello world"}
	tr := &fakeTranslator{out: "ہیلو دنیا"}
	repo := &fakeRepo{}
	nf := &fakeNotifier{}
	svc, _ := newTestService(t, stt, &fakeDetector{lang: "en"}, tr, repo, nf)

	res := svc.Run(context.Background(), "/tmp/in.wav", "auto")

	if res.Failure != nil {
		t.Fatalf("unexpected failure: %v", res.Failure)
	}
	if res.Transcript != "Hello world" || res.DetectedLang != "en" {
		t.Fatalf("result = %+v", res)
	}
	if res.ResolvedTarget != "ur" {
		t.Fatalf("resolved target = %q, want ur", res.ResolvedTarget)
	}
	if tr.calls != 1 || tr.lastTarget != "ur" {
		t.Fatalf("translator calls = %d target = %q, want one call targeting ur", tr.calls, tr.lastTarget)
	}
	if res.AudioPath == "" {
		t.Fatal("audio path must be set on success")
	}
	if _, err := os.Stat(res.AudioPath); err != nil {
		t.Fatalf("audio file missing: %v", err)
	}
	if nf.calls != 0 {
		t.Fatalf("notifier calls = %d on success, want 0", nf.calls)
	}
	if len(repo.runs) != 1 || repo.runs[0].Status != "ok" || repo.runs[0].TargetLang != "ur" {
		t.Fatalf("stored run = %+v", repo.runs)
	}
}
