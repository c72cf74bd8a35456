package ports

import (
	"context"
	"time"
)

type PipelineRun struct {
	ID             string    `json:"id"`
	Transcript     string    `json:"transcript"`
	DetectedLang   string    `json:"detected_lang"`
	TargetLang     string    `json:"target_lang"`
	TranslatedText string    `json:"translated_text"`
	AudioURL       string    `json:"audio_url,omitempty"`
	Status         string    `json:"status"`
	FailedStage    string    `json:"failed_stage,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type RunRepo interface {
	Create(ctx context.Context, run PipelineRun) error
	ListRecent(ctx context.Context, limit int) ([]PipelineRun, error)
}
