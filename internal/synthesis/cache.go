package synthesis

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"dubtrack/internal/textutil"
)

// clipCache stores raw WAV payloads on disk keyed by voice and text so reruns
// of a partially processed file skip synthesis calls already paid for.
type clipCache struct {
	dir string
}

func newClipCache(dir string) (*clipCache, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create clip cache dir: %w", err)
	}
	return &clipCache{dir: dir}, nil
}

func (c *clipCache) path(voiceName, text string) string {
	sum := sha256.Sum256([]byte(voiceName + "\x00" + text))
	name := fmt.Sprintf("%s-%s.wav", textutil.SanitizeToken(voiceName), hex.EncodeToString(sum[:8]))
	return filepath.Join(c.dir, name)
}

func (c *clipCache) load(voiceName, text string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	data, err := os.ReadFile(c.path(voiceName, text))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// store stages the payload in a temp file and renames it into place, so two
// cues with the same text racing to write never leave a torn entry behind.
func (c *clipCache) store(voiceName, text string, audio []byte) error {
	if c == nil {
		return nil
	}
	tmp, err := os.CreateTemp(c.dir, ".clip-*.tmp")
	if err != nil {
		return fmt.Errorf("stage clip: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return fmt.Errorf("stage clip: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("stage clip: %w", err)
	}
	if err := os.Rename(tmpName, c.path(voiceName, text)); err != nil {
		return fmt.Errorf("publish clip: %w", err)
	}
	return nil
}
