package media

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/wav"
)

// WriteWAVFile encodes a clip to path as 16-bit mono PCM. The write is
// atomic: a temp file in the same directory is renamed over the target so a
// crash never leaves a half-written master track.
func WriteWAVFile(path string, clip *Clip) error {
	if clip == nil || clip.SampleRate <= 0 {
		return fmt.Errorf("write wav %s: empty clip", path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".dubtrack-*.wav")
	if err != nil {
		return fmt.Errorf("write wav %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	encoder := wav.NewEncoder(tmp, clip.SampleRate, 16, 1, 1)
	if err := encoder.Write(clip.IntBuffer()); err != nil {
		tmp.Close()
		return fmt.Errorf("write wav %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("write wav %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write wav %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write wav %s: %w", path, err)
	}
	return nil
}
