package render

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"go-melodium/hw"
)

// WriteWAV writes a six channel 16 bit file, full scale at 10V, for DC
// coupled interfaces or for inspecting curves in an audio editor. Each
// millisecond frame is held for sampleRate/1000 samples.
func (r *Recording) WriteWAV(path string, sampleRate int) error {
	if sampleRate < 1000 {
		return fmt.Errorf("sample rate %d below 1kHz", sampleRate)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	channels := len(Frame{})
	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)

	perFrame := sampleRate / 1000
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, 0, len(r.Frames)*perFrame*channels),
		SourceBitDepth: 16,
	}
	for _, frame := range r.Frames {
		for i := 0; i < perFrame; i++ {
			for _, v := range frame {
				buf.Data = append(buf.Data, VoltageToSample(v))
			}
		}
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return enc.Close()
}

// VoltageToSample maps 0-10V onto 0..32767
func VoltageToSample(v float64) int {
	return int(hw.ClampVoltage(v) / hw.MaxOutputVoltage * 32767)
}
