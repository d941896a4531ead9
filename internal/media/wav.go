package media

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Clip holds decoded mono PCM audio.
type Clip struct {
	Samples    []int
	SampleRate int
}

// Duration returns the clip's play time.
func (c *Clip) Duration() time.Duration {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.SampleRate) * float64(time.Second))
}

// DecodeWAV decodes a mono WAV payload into PCM samples. Multi-channel input
// is rejected; the voice service is asked for mono explicitly.
func DecodeWAV(data []byte) (*Clip, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("decode wav: missing format")
	}
	if buf.Format.NumChannels != 1 {
		return nil, fmt.Errorf("decode wav: expected mono, got %d channels", buf.Format.NumChannels)
	}
	return &Clip{Samples: buf.Data, SampleRate: buf.Format.SampleRate}, nil
}

// IntBuffer wraps the clip for WAV encoding.
func (c *Clip) IntBuffer() *audio.IntBuffer {
	return &audio.IntBuffer{
		Data:           c.Samples,
		Format:         &audio.Format{SampleRate: c.SampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}
}
