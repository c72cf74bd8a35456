package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Service writes synthesized speech into a single output directory so the
// delivery layer can serve it and the janitor can reap it.
type Service struct {
	tts Synthesizer
	dir string
}

func NewService(tts Synthesizer, dir string) *Service {
	return &Service{
		tts: tts,
		dir: dir,
	}
}

// Synthesize renders text to an MP3 file and returns its path.
func (s *Service) Synthesize(ctx context.Context, text, lang string) (string, error) {
	data, err := s.tts.Synthesize(ctx, text, lang)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, uuid.NewString()+".mp3")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}

	return path, nil
}

// Remove deletes one synthesized file. Paths outside the output directory
// are rejected.
func (s *Service) Remove(path string) error {
	dir, err := filepath.Abs(s.dir)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if filepath.Dir(abs) != dir {
		return fmt.Errorf("refusing to remove %q outside %q", path, s.dir)
	}
	return os.Remove(abs)
}

// CleanupExpired removes MP3s older than ttl and returns how many were
// deleted. Called periodically from main.
func (s *Service) CleanupExpired(ttl time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	deadline := time.Now().Add(-ttl)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".mp3" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(deadline) {
			if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
