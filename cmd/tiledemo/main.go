package main

import (
	"fmt"
	"log/slog"
	"os"

	"vtilebuilder/pkg/config"
	"vtilebuilder/pkg/types"
	"vtilebuilder/pkg/vtile"

	"github.com/goccy/go-yaml"
)

// loadConfig loads cfg from path. If the file does not exist, it falls
// back to config.Default().
func loadConfig(path string) (config.Config, error) {
	var cfg config.Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("config file not found, using default config", "path", path)
			return config.Default(), nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func initLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.Logger.JSON {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)
}

func main() {
	path := "tiledemo.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := loadConfig(path)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	initLogger(&cfg)

	tb := vtile.NewTileBuilder()
	for _, seed := range cfg.Tile.Layers {
		layer := tb.AddLayer(seed.Name, types.Version(seed.Version), seed.Extent)
		buildSampleFeature(layer)
	}

	data := tb.Serialize()
	slog.Info("tile built", "layers", tb.NumLayers(), "bytes", len(data))
	fmt.Printf("%d bytes\n", len(data))
}

// buildSampleFeature adds one point feature, with a single property below
// version 3 and no property at version 3, so a freshly initialized demo
// tile is never entirely empty.
func buildSampleFeature(layer *vtile.LayerBuilder) {
	fb := vtile.NewPointFeatureBuilder(layer)
	fb.SetID(1)
	if err := fb.SetGeometry([]types.Point{{X: 0, Y: 0}}); err != nil {
		slog.Error("failed to set sample geometry", "error", err)
		return
	}
	if layer.Version() < vtile.Version3 {
		fb.AddProperty("name", vtile.StringValue("sample"))
	}
	fb.Commit()
}
