package cfg

import (
	"bookly/internal/app/api"
	"bookly/internal/app/convert"
	"bookly/internal/app/store"
	"bookly/pkg/ffmpeg"
	"bookly/pkg/speech"
)

type Config struct {
	Api api.Config `yaml:"api"`

	Speech  speech.Config  `yaml:"speech"`
	Convert convert.Config `yaml:"convert"`

	Store  store.Config  `yaml:"store"`
	Ffmpeg ffmpeg.Config `yaml:"ffmpeg"`
}
