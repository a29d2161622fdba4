package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path"

	"github.com/google/uuid"
)

// RemuxMP3Path rewrites the audio at inputPath into one continuous mp3
// stream. Concatenated mp3 frames play back fine in most players, but a
// re-encode gives a single consistent bitrate and fixes up frame headers.
func (c *Client) RemuxMP3Path(ctx context.Context, inputPath string) ([]byte, error) {
	outputPath := path.Join(c.TmpDir(), prefix+uuid.NewString())

	defer os.Remove(outputPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", "-i", inputPath, "-nostats", "-loglevel", "0", "-ar", "44100", "-ac", "1", "-b:a", "192k", "-vn", "-f", "mp3", outputPath)

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to run ffmpeg: %w", err)
	}

	output, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read output file: %w", err)
	}

	return output, nil
}

// RemuxMP3 is RemuxMP3Path for in-memory audio.
func (c *Client) RemuxMP3(ctx context.Context, data []byte) ([]byte, error) {
	inputPath := path.Join(c.TmpDir(), prefix+uuid.NewString())

	err := os.WriteFile(inputPath, data, 0644)
	if err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}

	defer os.Remove(inputPath)

	return c.RemuxMP3Path(ctx, inputPath)
}
