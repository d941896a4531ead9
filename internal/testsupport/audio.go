package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"dubtrack/internal/subtitles"
)

// WAVBytes encodes mono 16-bit PCM samples into an in-memory WAV payload.
func WAVBytes(t testing.TB, samples []int, sampleRate int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	encoder := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	err = encoder.Write(&audio.IntBuffer{
		Data:           samples,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	})
	if err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}
	return data
}

// Tone generates a deterministic non-silent sample ramp of the given length.
func Tone(n int) []int {
	samples := make([]int, n)
	for i := range samples {
		samples[i] = (i%200 - 100) * 50
	}
	return samples
}

// Cue builds a cue spanning [start, end) seconds with the given text.
func Cue(index int, start, end float64, text string) subtitles.Cue {
	return subtitles.Cue{
		Index: index,
		Start: time.Duration(start * float64(time.Second)),
		End:   time.Duration(end * float64(time.Second)),
		Text:  text,
	}
}
