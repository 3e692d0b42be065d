// Package filesave writes the rendered result to a file on disk.
package filesave

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"typograf-live/internal/contracts"
)

// ErrNoDir is returned when no output directory is configured.
var ErrNoDir = errors.New("filesave: no output directory configured")

const maxAttempts = 100

// Notifier shows the outcome of a save.
type Notifier interface {
	Notify(text string, kind contracts.NoticeKind, autoDismiss bool)
}

// Saver writes text files into a directory, never overwriting one.
type Saver struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

func New(dir string, logger *slog.Logger) *Saver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saver{dir: dir, now: time.Now, logger: logger}
}

// Save writes text and notifies n. On failure n receives fallback, which
// the caller has already localized.
func (s *Saver) Save(text, fallback string, n Notifier) {
	path, err := s.Write(text)
	if err != nil {
		s.logger.Warn("save result", "error", err)
		n.Notify(fallback, contracts.NoticeError, true)
		return
	}
	s.logger.Info("result saved", "path", path, "bytes", len(text))
	n.Notify(filepath.Base(path), contracts.NoticeOK, true)
}

// Write stores text in a new file and returns its path.
func (s *Saver) Write(text string) (string, error) {
	if s.dir == "" {
		return "", ErrNoDir
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create save dir: %w", err)
	}

	base := "typograf-" + s.now().Format("20060102-150405")
	for i := 0; i < maxAttempts; i++ {
		name := base + ".txt"
		if i > 0 {
			name = fmt.Sprintf("%s-%d.txt", base, i)
		}
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", name, err)
		}

		if _, err := f.WriteString(text); err != nil {
			f.Close()
			return "", fmt.Errorf("write %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", name, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %s", base)
}
