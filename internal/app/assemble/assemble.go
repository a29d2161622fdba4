// Package assemble joins per-chunk audio into one playable artifact.
package assemble

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bookly/pkg/ffmpeg"
)

// ErrIncompleteSynthesis means a chunk index is missing or duplicated. The
// orchestrator fails a conversion on the first synthesis error, so hitting
// this indicates an internal bookkeeping bug rather than a model failure.
var ErrIncompleteSynthesis = errors.New("incomplete synthesis")

// Chunk is the audio produced for one text segment.
type Chunk struct {
	Index int
	Audio []byte
}

type Assembler struct {
	logger *slog.Logger
	ffmpeg *ffmpeg.Client // nil disables remuxing
}

func New(logger *slog.Logger, ffmpegClient *ffmpeg.Client) *Assembler {
	return &Assembler{
		logger: logger,
		ffmpeg: ffmpegClient,
	}
}

// Assemble concatenates chunk audio in index order. Every index in 0..N-1
// must be present exactly once. When an ffmpeg client is configured the
// concatenated stream is re-muxed into one clean mp3; if that fails the
// plain concatenation is kept, since back-to-back mp3 frames stay playable.
func (a *Assembler) Assemble(ctx context.Context, chunks []Chunk) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks", ErrIncompleteSynthesis)
	}

	ordered := make([][]byte, len(chunks))

	for _, chunk := range chunks {
		if chunk.Index < 0 || chunk.Index >= len(chunks) {
			return nil, fmt.Errorf("%w: index %d out of range [0, %d)", ErrIncompleteSynthesis, chunk.Index, len(chunks))
		}
		if ordered[chunk.Index] != nil {
			return nil, fmt.Errorf("%w: duplicate index %d", ErrIncompleteSynthesis, chunk.Index)
		}
		if len(chunk.Audio) == 0 {
			return nil, fmt.Errorf("%w: empty audio at index %d", ErrIncompleteSynthesis, chunk.Index)
		}

		ordered[chunk.Index] = chunk.Audio
	}

	out := bytes.Buffer{}
	for _, audio := range ordered {
		out.Write(audio)
	}

	audio := out.Bytes()

	if a.ffmpeg != nil && len(chunks) > 1 {
		remuxed, err := a.ffmpeg.RemuxMP3(ctx, audio)
		if err != nil {
			a.logger.Warn("remux failed, keeping concatenated stream", "err", err)
		} else {
			audio = remuxed
		}
	}

	return audio, nil
}
