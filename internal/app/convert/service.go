// Package convert composes extraction, chunking, synthesis, assembly and
// storage into the two public flows: full chapter conversion and short voice
// samples.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"bookly/internal/app/assemble"
	"bookly/internal/app/chunk"
	"bookly/internal/app/extract"
	"bookly/internal/app/metrics"
	"bookly/internal/app/narrator"
	"bookly/internal/app/store"
	"bookly/pkg/ffmpeg"
	"bookly/pkg/slg"
	"bookly/pkg/speech"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSampleText is spoken when a voice sample is requested without
	// custom text.
	DefaultSampleText = "This is a sample of the selected voice. " +
		"It is designed to be short and clear for quick evaluation."

	SampleMaxChars = 500
)

type Config struct {
	// ChunkLimit is the per-synthesis-call text budget in characters.
	ChunkLimit int `yaml:"chunk_limit"`

	// Workers bounds concurrent synthesis calls within one conversion.
	Workers int `yaml:"workers"`
}

// Synthesizer produces audio for one text segment.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, instructions string) ([]byte, error)
}

type Service struct {
	cfg    *Config
	logger *slog.Logger

	speech    Synthesizer
	assembler *assemble.Assembler
	store     *store.Store
	ffmpeg    *ffmpeg.Client // nil disables duration probing
}

func NewService(cfg *Config, logger *slog.Logger, synth Synthesizer, assembler *assemble.Assembler, artifacts *store.Store, ffmpegClient *ffmpeg.Client) *Service {
	if cfg.ChunkLimit <= 0 {
		cfg.ChunkLimit = chunk.DefaultLimit
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	return &Service{
		cfg:       cfg,
		logger:    logger,
		speech:    synth,
		assembler: assembler,
		store:     artifacts,
		ffmpeg:    ffmpegClient,
	}
}

// ConversionRequest carries one chapter upload.
type ConversionRequest struct {
	FileName string
	Markdown []byte
	Voice    string
	Narrator string
}

// SampleRequest asks for a short preview of a voice.
type SampleRequest struct {
	Voice    string
	Narrator string
	Text     string
}

// Result points at the stored artifact.
type Result struct {
	FileName string `json:"filename"`
	AudioURL string `json:"audio_url"`
}

// Convert runs the full pipeline: extract narration text, chunk it, speak
// every chunk, assemble the audio in order and store the artifact. Any stage
// failure aborts the whole request; no partial artifact is ever stored.
func (s *Service) Convert(ctx context.Context, req *ConversionRequest) (*Result, error) {
	logger := slg.GetSlog(ctx)

	if !speech.KnownVoice(req.Voice) {
		metrics.Conversions.WithLabelValues("convert", "rejected").Inc()
		return nil, fmt.Errorf("%w: %s", speech.ErrInvalidVoice, req.Voice)
	}

	instructions, err := narrator.Resolve(req.Narrator)
	if err != nil {
		metrics.Conversions.WithLabelValues("convert", "rejected").Inc()
		return nil, err
	}

	text, err := extract.Narration(req.Markdown)
	if err != nil {
		metrics.Conversions.WithLabelValues("convert", "rejected").Inc()
		return nil, err
	}

	segments := chunk.Split(text, s.cfg.ChunkLimit)
	metrics.ChunksPerDoc.Observe(float64(len(segments)))

	logger.Info("converting chapter",
		"file", req.FileName,
		"voice", req.Voice,
		"narrator", req.Narrator,
		"chunks", len(segments),
	)

	chunks, err := s.synthesizeAll(ctx, segments, req.Voice, instructions)
	if err != nil {
		metrics.Conversions.WithLabelValues("convert", "failure").Inc()
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	audio, err := s.assembler.Assemble(ctx, chunks)
	if err != nil {
		metrics.Conversions.WithLabelValues("convert", "failure").Inc()
		return nil, err
	}

	result, err := s.storeArtifact(ctx, stem(req.FileName)+"-"+req.Voice, audio)
	if err != nil {
		metrics.Conversions.WithLabelValues("convert", "failure").Inc()
		return nil, err
	}

	metrics.Conversions.WithLabelValues("convert", "success").Inc()

	return result, nil
}

// Sample synthesizes one short segment and stores it. No extraction or
// chunking runs; the text is either user supplied or the fixed default.
func (s *Service) Sample(ctx context.Context, req *SampleRequest) (*Result, error) {
	if !speech.KnownVoice(req.Voice) {
		metrics.Conversions.WithLabelValues("sample", "rejected").Inc()
		return nil, fmt.Errorf("%w: %s", speech.ErrInvalidVoice, req.Voice)
	}

	instructions, err := narrator.Resolve(req.Narrator)
	if err != nil {
		metrics.Conversions.WithLabelValues("sample", "rejected").Inc()
		return nil, err
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		text = DefaultSampleText
	}

	if utf8.RuneCountInString(text) > SampleMaxChars {
		metrics.Conversions.WithLabelValues("sample", "rejected").Inc()
		return nil, fmt.Errorf("%w: at most %d characters", ErrSampleTooLong, SampleMaxChars)
	}

	audio, err := s.speech.Synthesize(ctx, text, req.Voice, instructions)
	if err != nil {
		metrics.Conversions.WithLabelValues("sample", "failure").Inc()
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	result, err := s.storeArtifact(ctx, "sample-"+req.Voice, audio)
	if err != nil {
		metrics.Conversions.WithLabelValues("sample", "failure").Inc()
		return nil, err
	}

	metrics.Conversions.WithLabelValues("sample", "success").Inc()

	return result, nil
}

// synthesizeAll speaks every segment with bounded concurrency. Results are
// slotted by segment index, so reassembly order never depends on completion
// order. The first failed chunk cancels the rest of the group.
func (s *Service) synthesizeAll(ctx context.Context, segments []chunk.Segment, voice, instructions string) ([]assemble.Chunk, error) {
	chunks := make([]assemble.Chunk, len(segments))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.Workers)

	for _, segment := range segments {
		segment := segment

		group.Go(func() error {
			audio, err := s.speech.Synthesize(groupCtx, segment.Text, voice, instructions)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", segment.Index, err)
			}

			chunks[segment.Index] = assemble.Chunk{
				Index: segment.Index,
				Audio: audio,
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return chunks, nil
}

func (s *Service) storeArtifact(ctx context.Context, base string, audio []byte) (*Result, error) {
	logger := slg.GetSlog(ctx)

	name, err := s.store.Save(base, audio)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	if s.ffmpeg != nil {
		if probe, err := s.ffmpeg.Probe(ctx, audio); err == nil {
			logger.Info("stored artifact", "file", name, "bytes", len(audio), "duration", probe.Duration)
		} else {
			logger.Info("stored artifact", "file", name, "bytes", len(audio))
		}
	} else {
		logger.Info("stored artifact", "file", name, "bytes", len(audio))
	}

	return &Result{
		FileName: name,
		AudioURL: "/audio/" + name,
	}, nil
}

func stem(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
