// Package evidence captures and stores screenshots of violations.
package evidence

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store writes screenshots into a directory. It never deletes files;
// retention belongs to whoever owns the directory.
type Store struct {
	Dir string

	now    func() time.Time
	suffix func() string
}

// NewStore returns a store writing into dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Save writes png and returns its path. Names follow
// error_<rule>_<unix millis>_<random>.png, with a fallback marker for
// full-page substitutes of element screenshots.
func (s *Store) Save(ruleID string, fallback bool, png []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create evidence dir: %w", err)
	}
	name := s.fileName(ruleID, fallback)
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write evidence: %w", err)
	}
	return path, nil
}

func (s *Store) fileName(ruleID string, fallback bool) string {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	suffix := randomSuffix
	if s.suffix != nil {
		suffix = s.suffix
	}
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return '_'
	}, ruleID)
	kind := ""
	if fallback {
		kind = "fallback_"
	}
	return fmt.Sprintf("error_%s_%s%d_%s.png", id, kind, now().UnixMilli(), suffix())
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
