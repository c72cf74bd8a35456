package pipeline

import "fmt"

type Stage string

const (
	StageTranscription Stage = "transcription"
	StageTranslation   Stage = "translation"
	StageSynthesis     Stage = "synthesis"
)

// StageError marks which stage broke the run. It replaces the sentinel
// strings the pipeline would otherwise have to prefix-match on.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Result is one pipeline run. Fields up to and including the failed stage
// are populated, everything after it stays empty. Failure is nil on success.
type Result struct {
	ID             string
	Transcript     string
	DetectedLang   string
	ResolvedTarget string
	TranslatedText string
	AudioPath      string
	AudioURL       string
	Failure        *StageError
}
