package store

import (
	"fmt"
	"io"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(&Config{Dir: t.TempDir()})
	require.NoError(t, err)

	return s
}

func TestSaveAndOpen(t *testing.T) {
	s := newTestStore(t)

	name, err := s.Save("chapter-alloy", []byte("audio-bytes"))
	require.NoError(t, err)

	assert.Regexp(t, `^chapter-alloy-\d{14}\.mp3$`, name)

	artifact, err := s.Open(name)
	require.NoError(t, err)
	defer artifact.Close()

	data, err := io.ReadAll(artifact)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), data)
}

func TestSaveSameBaseNeverOverwrites(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Save("chapter-nova", []byte("first"))
	require.NoError(t, err)

	second, err := s.Save("chapter-nova", []byte("second"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	for name, want := range map[string]string{first: "first", second: "second"} {
		artifact, err := s.Open(name)
		require.NoError(t, err)

		data, err := io.ReadAll(artifact)
		artifact.Close()
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}

func TestSaveConcurrentSameBase(t *testing.T) {
	s := newTestStore(t)

	const n = 8

	names := make([]string, n)
	wg := sync.WaitGroup{}

	for i := 0; i < n; i++ {
		i := i

		wg.Add(1)
		go func() {
			defer wg.Done()

			name, err := s.Save("same-base", []byte(fmt.Sprintf("payload-%d", i)))
			assert.NoError(t, err)
			names[i] = name
		}()
	}

	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, name := range names {
		_, dup := seen[name]
		assert.False(t, dup, "duplicate artifact name %q", name)
		seen[name] = struct{}{}
	}
}

func TestSaveSanitizesBase(t *testing.T) {
	s := newTestStore(t)

	name, err := s.Save("my chapter!?/x", []byte("a"))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9._-]+\.mp3$`), name)

	_, err = s.Open(name)
	require.NoError(t, err)
}

func TestOpenUnknown(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Open("missing.mp3")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenRejectsTraversal(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"../secret.mp3", "a/b.mp3", ".hidden", ""} {
		_, err := s.Open(name)
		require.ErrorIs(t, err, ErrNotFound, "name %q", name)
	}
}
