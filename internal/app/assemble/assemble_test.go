package assemble

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssembler() *Assembler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func TestAssembleOrdersByIndex(t *testing.T) {
	assembler := newTestAssembler()

	// arrival order deliberately scrambled
	chunks := []Chunk{
		{Index: 2, Audio: []byte("CC")},
		{Index: 0, Audio: []byte("AA")},
		{Index: 3, Audio: []byte("DD")},
		{Index: 1, Audio: []byte("BB")},
	}

	out, err := assembler.Assemble(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, []byte("AABBCCDD"), out)
}

func TestAssembleSingleChunk(t *testing.T) {
	assembler := newTestAssembler()

	out, err := assembler.Assemble(context.Background(), []Chunk{{Index: 0, Audio: []byte("solo")}})
	require.NoError(t, err)
	assert.Equal(t, []byte("solo"), out)
}

func TestAssembleMissingIndex(t *testing.T) {
	assembler := newTestAssembler()

	_, err := assembler.Assemble(context.Background(), []Chunk{
		{Index: 0, Audio: []byte("AA")},
		{Index: 2, Audio: []byte("CC")},
	})
	require.ErrorIs(t, err, ErrIncompleteSynthesis)
}

func TestAssembleDuplicateIndex(t *testing.T) {
	assembler := newTestAssembler()

	_, err := assembler.Assemble(context.Background(), []Chunk{
		{Index: 0, Audio: []byte("AA")},
		{Index: 0, Audio: []byte("AA")},
	})
	require.ErrorIs(t, err, ErrIncompleteSynthesis)
}

func TestAssembleEmptyAudio(t *testing.T) {
	assembler := newTestAssembler()

	_, err := assembler.Assemble(context.Background(), []Chunk{{Index: 0}})
	require.ErrorIs(t, err, ErrIncompleteSynthesis)
}

func TestAssembleNoChunks(t *testing.T) {
	assembler := newTestAssembler()

	_, err := assembler.Assemble(context.Background(), nil)
	require.ErrorIs(t, err, ErrIncompleteSynthesis)
}
