package infra

import (
	"context"
	"database/sql"
	"time"

	"github.com/Vovarama1992/voice_translator/internal/ports"
)

type runRepo struct {
	db *sql.DB
}

func NewRunRepo(db *sql.DB) ports.RunRepo {
	return &runRepo{db: db}
}

func (r *runRepo) Create(ctx context.Context, run ports.PipelineRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pipeline_runs
			(id, transcript, detected_lang, target_lang, translated_text,
			 audio_url, status, failed_stage, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		run.ID,
		run.Transcript,
		run.DetectedLang,
		run.TargetLang,
		run.TranslatedText,
		run.AudioURL,
		run.Status,
		run.FailedStage,
		run.ErrorMessage,
		time.Now(),
	)
	return err
}

func (r *runRepo) ListRecent(ctx context.Context, limit int) ([]ports.PipelineRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, transcript, detected_lang, target_lang, translated_text,
		       audio_url, status, failed_stage, error_message, created_at
		FROM pipeline_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ports.PipelineRun
	for rows.Next() {
		var run ports.PipelineRun
		if err := rows.Scan(
			&run.ID,
			&run.Transcript,
			&run.DetectedLang,
			&run.TargetLang,
			&run.TranslatedText,
			&run.AudioURL,
			&run.Status,
			&run.FailedStage,
			&run.ErrorMessage,
			&run.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}
