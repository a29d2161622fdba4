// Package ffmpeg shells out to ffmpeg/ffprobe for audio container work.
package ffmpeg

import "os"

type Config struct {
	// Remux enables re-encoding of assembled audio into one clean mp3
	// stream. Requires ffmpeg on PATH.
	Remux  bool   `yaml:"remux"`
	TmpDir string `yaml:"tmp_dir"`
}

type Client struct {
	cfg *Config
}

func New(cfg *Config) *Client {
	return &Client{
		cfg: cfg,
	}
}

func (c *Client) TmpDir() string {
	if c == nil || c.cfg == nil || c.cfg.TmpDir == "" {
		return os.TempDir()
	}
	return c.cfg.TmpDir
}

const prefix = "bookly_"
