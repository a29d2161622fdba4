package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path"
	"time"

	"github.com/google/uuid"
)

type ProbeResult struct {
	Duration time.Duration
}

type ffprobeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (c *Client) ProbePath(ctx context.Context, path string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "quiet", "-print_format", "json", "-show_format", path)

	res, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("exec ffprobe: %w", err)
	}

	var result *ffprobeResult
	err = json.Unmarshal(res, &result)
	if err != nil {
		return nil, fmt.Errorf("unmarshal json: %w", err)
	}

	dur, err := time.ParseDuration(result.Format.Duration + "s")
	if err != nil {
		return nil, fmt.Errorf("parse duration: %w", err)
	}

	return &ProbeResult{
		Duration: dur,
	}, nil
}

func (c *Client) Probe(ctx context.Context, data []byte) (*ProbeResult, error) {
	path := path.Join(c.TmpDir(), prefix+uuid.NewString())

	err := os.WriteFile(path, data, 0644)
	if err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}

	defer os.Remove(path)

	return c.ProbePath(ctx, path)
}
