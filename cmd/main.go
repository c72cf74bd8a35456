package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/voice_translator/internal/config"
	"github.com/Vovarama1992/voice_translator/internal/delivery"
	"github.com/Vovarama1992/voice_translator/internal/infra"
	"github.com/Vovarama1992/voice_translator/internal/langdetect"
	"github.com/Vovarama1992/voice_translator/internal/notifier"
	"github.com/Vovarama1992/voice_translator/internal/pipeline"
	"github.com/Vovarama1992/voice_translator/internal/ports"
	"github.com/Vovarama1992/voice_translator/internal/speech"
	"github.com/Vovarama1992/voice_translator/internal/transcribe"
	"github.com/Vovarama1992/voice_translator/internal/translate"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / CONFIG INIT
	// =========================================================================

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(cfg.AudioDir, 0755); err != nil {
		log.Fatalf("failed to create audio dir %s: %v", cfg.AudioDir, err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// OPTIONAL INFRASTRUCTURE (DB / S3 / ALERTS)
	// =========================================================================

	var runRepo ports.RunRepo
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(ctx); err != nil {
			cancel()
			log.Fatalf("db ping failed: %v", err)
		}
		cancel()
		defer db.Close()

		runRepo = infra.NewRunRepo(db)
	} else {
		log.Printf("[main] DATABASE_URL not set, run history disabled")
	}

	var s3Client ports.S3Client
	if cfg.S3Configured() {
		s3Client, err = infra.NewS3Client(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
	} else {
		log.Printf("[main] S3 not configured, audio archive disabled")
	}

	var alerts notifier.Notificator
	if cfg.AlertsConfigured() {
		alertInfra, err := notifier.NewInfra(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("failed to init alert bot: %v", err)
		}
		alerts = notifier.NewService(alertInfra)
	} else {
		log.Printf("[main] telegram alerts not configured")
	}

	// =========================================================================
	// CLIENTS (STT / TRANSLATE / TTS)
	// =========================================================================

	sttClient := transcribe.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.WhisperModel)

	var ttsBackend speech.Synthesizer = speech.NewGTTSClient()
	if cfg.ElevenLabsAPIKey != "" {
		ttsBackend = speech.NewElevenLabsClient(cfg.ElevenLabsAPIKey)
	}

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	detector := langdetect.NewDetector()

	translateService := translate.NewService(
		translate.NewGoogleClient(),
		translate.RetryPolicy{
			MaxAttempts: cfg.TranslateMaxAttempts,
			Backoff:     cfg.TranslateRetryBackoff,
		},
	)

	speechService := speech.NewService(ttsBackend, cfg.AudioDir)

	pipelineService := pipeline.NewService(
		sttClient,
		detector,
		translateService,
		speechService,
		runRepo,
		s3Client,
		alerts,
		pipeline.AutoResolve{
			Source:   cfg.AutoPairSource,
			Target:   cfg.AutoPairTarget,
			Fallback: cfg.AutoFallback,
		},
		cfg.StageTimeout,
	)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	handler := delivery.NewHandler(pipelineService, runRepo, cfg.AudioDir, cfg.MaxUploadBytes, zl)
	delivery.RegisterRoutes(r, handler)

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})

	// =========================================================================
	// BACKGROUND JOBS
	// =========================================================================

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			removed, err := speechService.CleanupExpired(cfg.AudioTTL)
			if err != nil {
				log.Printf("[audio-janitor] error: %v", err)
			} else if removed > 0 {
				log.Printf("[audio-janitor] removed %d expired file(s)", removed)
			}
		}
	}()

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.Port
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "voice_translator",
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
