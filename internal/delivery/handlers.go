package delivery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice_translator/internal/pipeline"
	"github.com/Vovarama1992/voice_translator/internal/ports"
	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
)

// TargetLanguages is the fixed set the upload form offers.
var TargetLanguages = []string{"auto", "en", "ur", "fr", "es", "de", "ar"}

type PipelineService interface {
	Run(ctx context.Context, audioPath, targetHint string) pipeline.Result
}

type Handler struct {
	pipeline  PipelineService
	runs      ports.RunRepo // nil when history is disabled
	audioDir  string
	maxUpload int64
	log       *logger.ZapLogger
}

func NewHandler(pipelineSvc PipelineService, runs ports.RunRepo, audioDir string, maxUpload int64, log *logger.ZapLogger) *Handler {
	return &Handler{
		pipeline:  pipelineSvc,
		runs:      runs,
		audioDir:  audioDir,
		maxUpload: maxUpload,
		log:       log,
	}
}

type translateResponse struct {
	ID             string `json:"id"`
	Transcript     string `json:"transcript"`
	DetectedLang   string `json:"detected_lang"`
	TargetLang     string `json:"target_lang"`
	TranslatedText string `json:"translated_text"`
	AudioURL       string `json:"audio_url,omitempty"`
	Warning        string `json:"warning,omitempty"`
	FailedStage    string `json:"failed_stage,omitempty"`
	Error          string `json:"error,omitempty"`
}

func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	// hard cap on the whole request body; ParseMultipartForm alone only
	// bounds the in-memory part and would still spool the rest to disk
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart", Error: err})
		http.Error(w, "invalid multipart: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "missing file", Error: err})
		http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".wav" && ext != ".mp3" {
		http.Error(w, "unsupported audio format, want wav or mp3", http.StatusBadRequest)
		return
	}

	target := r.FormValue("target_lang")
	if target == "" {
		target = "auto"
	}
	if !validTarget(target) {
		http.Error(w, "unsupported target_lang: "+target, http.StatusBadRequest)
		return
	}

	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		http.Error(w, "failed to buffer upload: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		http.Error(w, "failed to buffer upload: "+err.Error(), http.StatusInternalServerError)
		return
	}
	tmp.Close()

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "translate upload " + header.Filename + " (" + humanize.Bytes(uint64(header.Size)) + ") target=" + target,
	})

	res := h.pipeline.Run(r.Context(), tmp.Name(), target)

	resp := translateResponse{
		ID:             res.ID,
		Transcript:     res.Transcript,
		DetectedLang:   res.DetectedLang,
		TargetLang:     res.ResolvedTarget,
		TranslatedText: res.TranslatedText,
	}
	if res.AudioURL != "" {
		resp.AudioURL = res.AudioURL
	} else if res.AudioPath != "" {
		resp.AudioURL = "/audio/" + filepath.Base(res.AudioPath)
	}

	w.Header().Set("Content-Type", "application/json")

	if res.Failure != nil {
		resp.FailedStage = string(res.Failure.Stage)
		switch res.Failure.Stage {
		case pipeline.StageSynthesis:
			// partial success: text survived, audio did not; the reason goes
			// to logs, not into the body
			h.log.Log(logger.LogEntry{Level: "error", Message: "synthesis failed", Error: res.Failure.Err})
			resp.Warning = "no audio output generated"
			w.WriteHeader(http.StatusOK)
		default:
			h.log.Log(logger.LogEntry{Level: "error", Message: "pipeline failed", Error: res.Failure})
			resp.Error = res.Failure.Error()
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
		json.NewEncoder(w).Encode(resp)
		return
	}

	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) Languages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"targets": TargetLanguages})
}

func (h *Handler) Audio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != filepath.Base(name) || filepath.Ext(name) != ".mp3" {
		http.Error(w, "invalid audio name", http.StatusBadRequest)
		return
	}

	path := filepath.Join(h.audioDir, name)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "audio not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, path)
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		http.Error(w, "run history is disabled", http.StatusServiceUnavailable)
		return
	}

	runs, err := h.runs.ListRecent(r.Context(), 50)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "db error", Error: err})
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

func validTarget(target string) bool {
	for _, t := range TargetLanguages {
		if t == target {
			return true
		}
	}
	return false
}
