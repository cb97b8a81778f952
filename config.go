package screenie

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-hclog"

	"github.com/szxp/screenie/sizefit"
)

const (
	ResizerImaging     = "imaging"
	ResizerNfnt        = "nfnt"
	ResizerImageMagick = "imagemagick"
)

// Config is the content of the TOML configuration file.
type Config struct {
	Server    ServerSection    `toml:"server"`
	Thumbnail ThumbnailSection `toml:"thumbnail"`
}

type ServerSection struct {
	Addr         string   `toml:"addr"`
	SourceDir    string   `toml:"source_dir"`
	ThumbnailDir string   `toml:"thumbnail_dir"`
	AllowedExts  []string `toml:"allowed_exts"`
	LogLevel     string   `toml:"log_level"`
	Resizer      string   `toml:"resizer"`

	// MaxWidth and MaxHeight bound thumbnails requested with query
	// overrides.
	MaxWidth  int `toml:"max_width"`
	MaxHeight int `toml:"max_height"`
}

type ThumbnailSection struct {
	Width              int             `toml:"width"`
	Height             int             `toml:"height"`
	Mode               sizefit.FitMode `toml:"mode"`
	RespectOrientation bool            `toml:"respect_orientation"`
	Enlarge            bool            `toml:"enlarge"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerSection{
			Addr:         ":7664",
			SourceDir:    "source",
			ThumbnailDir: "thumbnail",
			AllowedExts:  []string{".jpg", ".jpeg", ".png", ".gif"},
			LogLevel:     "INFO",
			Resizer:      ResizerImaging,
			MaxWidth:     4096,
			MaxHeight:    4096,
		},
		Thumbnail: ThumbnailSection{
			Width:   320,
			Height:  240,
			Mode:    sizefit.Fit,
			Enlarge: false,
		},
	}
}

// LoadConfig reads the TOML file at path on top of the defaults.
func LoadConfig(path string) (Config, error) {
	conf := DefaultConfig()
	md, err := toml.DecodeFile(path, &conf)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}
	if err := conf.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return conf, nil
}

func (c Config) Validate() error {
	switch c.Server.Resizer {
	case ResizerImaging, ResizerNfnt, ResizerImageMagick:
	default:
		return fmt.Errorf("unknown resizer %q", c.Server.Resizer)
	}
	if c.Server.MaxWidth < 1 || c.Server.MaxHeight < 1 ||
		c.Server.MaxWidth > sizefit.MaxDimension || c.Server.MaxHeight > sizefit.MaxDimension {
		return fmt.Errorf("invalid max thumbnail size %dx%d", c.Server.MaxWidth, c.Server.MaxHeight)
	}
	if hclog.LevelFromString(c.Server.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", c.Server.LogLevel)
	}
	_, err := c.ThumbnailConfig()
	return err
}

// MaxThumbnailSize returns the bound of thumbnails requested with query
// overrides.
func (c Config) MaxThumbnailSize() sizefit.Size {
	return sizefit.SizeOf(c.Server.MaxWidth, c.Server.MaxHeight)
}

// ThumbnailConfig returns the fitting configuration of the thumbnail section.
func (c Config) ThumbnailConfig() (sizefit.Config, error) {
	t := c.Thumbnail
	var options sizefit.FitOptions
	options[sizefit.RespectOrientation] = t.RespectOrientation
	options[sizefit.Enlarge] = t.Enlarge
	cfg := sizefit.Config{
		Target:  sizefit.SizeOf(t.Width, t.Height),
		Mode:    t.Mode,
		Options: options,
	}
	if err := cfg.Validate(); err != nil {
		return sizefit.Config{}, err
	}
	return cfg, nil
}

// ApplyThumbnailConfig updates f with the thumbnail section. Listeners of f
// are notified once if anything changed.
func (c Config) ApplyThumbnailConfig(f *sizefit.Fitter) (bool, error) {
	cfg, err := c.ThumbnailConfig()
	if err != nil {
		return false, err
	}
	return f.SetConfig(cfg)
}
