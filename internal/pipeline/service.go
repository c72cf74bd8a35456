package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/voice_translator/internal/notifier"
	"github.com/Vovarama1992/voice_translator/internal/ports"
	"github.com/google/uuid"
)

var ErrNoAudio = errors.New("no audio input")

// === Интерфейсы ===

type Transcriber interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
}

type Detector interface {
	Detect(text string) string
}

type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (translated, detectedSource string, err error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) (string, error)
}

// AutoResolve maps the "auto" target hint onto a concrete language:
// detected Source becomes Target, anything else (including "unknown")
// becomes Fallback.
type AutoResolve struct {
	Source   string
	Target   string
	Fallback string
}

// Service runs the four stages in order and short-circuits on the first
// failure. Repo, archive and alerts are optional collaborators.
type Service struct {
	stt        Transcriber
	detector   Detector
	translator Translator
	synth      Synthesizer

	runs    ports.RunRepo
	archive ports.S3Client
	alerts  notifier.Notificator

	auto         AutoResolve
	stageTimeout time.Duration
}

func NewService(
	stt Transcriber,
	detector Detector,
	translator Translator,
	synth Synthesizer,
	runs ports.RunRepo,
	archive ports.S3Client,
	alerts notifier.Notificator,
	auto AutoResolve,
	stageTimeout time.Duration,
) *Service {
	return &Service{
		stt:          stt,
		detector:     detector,
		translator:   translator,
		synth:        synth,
		runs:         runs,
		archive:      archive,
		alerts:       alerts,
		auto:         auto,
		stageTimeout: stageTimeout,
	}
}

// Run executes transcription → detection → translation → synthesis for one
// uploaded clip. It always returns a Result; Failure marks the first broken
// stage and later fields stay empty.
func (s *Service) Run(ctx context.Context, audioPath, targetHint string) Result {
	res := Result{ID: uuid.NewString()}
	start := time.Now()
	log.Printf("[pipeline] >>> START id=%s target=%s", res.ID, targetHint)

	if audioPath == "" {
		res.Failure = &StageError{Stage: StageTranscription, Err: ErrNoAudio}
		s.finish(ctx, &res)
		return res
	}

	// 1) голос -> текст
	transcript, err := s.withTimeout(ctx, func(c context.Context) (string, error) {
		return s.stt.Transcribe(c, audioPath)
	})
	if err != nil {
		res.Failure = &StageError{Stage: StageTranscription, Err: err}
		s.finish(ctx, &res)
		return res
	}
	res.Transcript = transcript
	log.Printf("[pipeline][%.1fs] transcribed %d chars", time.Since(start).Seconds(), len(transcript))

	// 2) язык
	res.DetectedLang = s.detector.Detect(transcript)

	// 3) целевой язык
	res.ResolvedTarget = s.resolveTarget(targetHint, res.DetectedLang)
	log.Printf("[pipeline] detected=%s resolved=%s", res.DetectedLang, res.ResolvedTarget)

	// 4) перевод (пропускаем, если язык уже целевой)
	if res.ResolvedTarget == res.DetectedLang {
		res.TranslatedText = transcript
	} else {
		c, cancel := context.WithTimeout(ctx, s.stageTimeout)
		translated, remoteSource, err := s.translator.Translate(c, transcript, res.ResolvedTarget)
		cancel()
		if err != nil {
			res.Failure = &StageError{Stage: StageTranslation, Err: err}
			s.finish(ctx, &res)
			return res
		}
		res.TranslatedText = translated

		// cross-check only: local detection already resolved the target,
		// the remote's opinion is not allowed to change it mid-run
		if remoteSource != "" && remoteSource != res.DetectedLang {
			log.Printf("[pipeline] source mismatch id=%s local=%s remote=%s", res.ID, res.DetectedLang, remoteSource)
		}
	}

	// 5) текст -> голос
	outPath, err := s.withTimeout(ctx, func(c context.Context) (string, error) {
		return s.synth.Synthesize(c, res.TranslatedText, res.ResolvedTarget)
	})
	if err != nil {
		// partial success: transcript and translation survive, audio does not
		res.Failure = &StageError{Stage: StageSynthesis, Err: err}
		s.finish(ctx, &res)
		return res
	}
	res.AudioPath = outPath

	if s.archive != nil {
		s.archiveAudio(ctx, &res)
	}

	log.Printf("[pipeline][%.1fs] done id=%s audio=%s", time.Since(start).Seconds(), res.ID, res.AudioPath)
	s.finish(ctx, &res)
	return res
}

func (s *Service) resolveTarget(hint, detected string) string {
	if hint != "auto" {
		return hint
	}
	if detected == s.auto.Source {
		return s.auto.Target
	}
	return s.auto.Fallback
}

func (s *Service) withTimeout(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	c, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()
	return fn(c)
}

func (s *Service) archiveAudio(ctx context.Context, res *Result) {
	f, err := os.Open(res.AudioPath)
	if err != nil {
		log.Printf("[pipeline] archive open fail id=%s err=%v", res.ID, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Printf("[pipeline] archive stat fail id=%s err=%v", res.ID, err)
		return
	}

	key := fmt.Sprintf("runs/%s/%s", res.ID, filepath.Base(res.AudioPath))
	url, err := s.archive.PutObject(ctx, key, f, info.Size(), "audio/mpeg")
	if err != nil {
		log.Printf("[pipeline] archive upload fail id=%s err=%v", res.ID, err)
		return
	}
	res.AudioURL = url
}

// finish persists the run and alerts on failure. Both collaborators are
// best-effort, a broken sidecar never breaks the response.
func (s *Service) finish(ctx context.Context, res *Result) {
	if res.Failure != nil {
		log.Printf("[pipeline] FAIL id=%s stage=%s err=%v", res.ID, res.Failure.Stage, res.Failure.Err)
		if s.alerts != nil {
			details := fmt.Sprintf("run=%s stage=%s", res.ID, res.Failure.Stage)
			if err := s.alerts.Notify(ctx, res.Failure.Err, details); err != nil {
				log.Printf("[pipeline] notify fail id=%s err=%v", res.ID, err)
			}
		}
	}

	if s.runs == nil {
		return
	}

	run := ports.PipelineRun{
		ID:             res.ID,
		Transcript:     res.Transcript,
		DetectedLang:   res.DetectedLang,
		TargetLang:     res.ResolvedTarget,
		TranslatedText: res.TranslatedText,
		AudioURL:       res.AudioURL,
		Status:         "ok",
	}
	if res.Failure != nil {
		run.Status = "failed"
		run.FailedStage = string(res.Failure.Stage)
		run.ErrorMessage = res.Failure.Err.Error()
	}

	if err := s.runs.Create(ctx, run); err != nil {
		log.Printf("[pipeline] store run fail id=%s err=%v", res.ID, err)
	}
}
