package config

// Config is the root configuration structure for a tile-building
// process: logging plus the default construction parameters new tiles
// and layers are seeded with.

type Config struct {
	Logger LoggerConfig `yaml:"logger" validate:"required"`
	Tile   TileConfig   `yaml:"tile" validate:"required"`
}

type TileConfig struct {
	DefaultExtent  uint32       `yaml:"default_extent" validate:"required,min=1"`
	DefaultVersion uint32       `yaml:"default_version" validate:"required,min=1,max=3"`
	Layers         []LayerSeed  `yaml:"layers"`
}

// LayerSeed describes a layer a caller wants pre-created with
// TileBuilder.AddLayer at startup, before any features are added.
type LayerSeed struct {
	Name    string `yaml:"name" validate:"required"`
	Version uint32 `yaml:"version" validate:"required,min=1,max=3"`
	Extent  uint32 `yaml:"extent" validate:"min=0"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	JSON  bool   `yaml:"json"`
}

// Default returns a baseline development config: a single version-2
// layer at the standard 4096 extent.
func Default() Config {
	return Config{
		Logger: LoggerConfig{
			Level: "INFO",
			JSON:  false,
		},
		Tile: TileConfig{
			DefaultExtent:  4096,
			DefaultVersion: 2,
			Layers: []LayerSeed{
				{Name: "default", Version: 2, Extent: 4096},
			},
		},
	}
}
