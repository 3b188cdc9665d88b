// Package config initializes common application configuration
package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Preview   PreviewConfig   `mapstructure:"preview"`
	Watermark WatermarkConfig `mapstructure:"watermark"`
	Output    OutputConfig    `mapstructure:"output"`
	Fonts     FontsConfig     `mapstructure:"fonts"`
}

type PreviewConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type WatermarkConfig struct {
	Margin         int     `mapstructure:"margin"`
	FontSize       int     `mapstructure:"font_size"`
	TextColor      string  `mapstructure:"text_color"`
	TextOpacity    float64 `mapstructure:"text_opacity"`
	LogoWidthRatio float64 `mapstructure:"logo_width_ratio"`
	LogoOpacity    float64 `mapstructure:"logo_opacity"`
}

type OutputConfig struct {
	JPEGQuality int `mapstructure:"jpeg_quality"`
}

type FontsConfig struct {
	Dirs []string `mapstructure:"dirs"`
}

// Load reads ./config/config.yaml if present and falls back to defaults
// for everything else. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()

	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("preview.width", 600)
	v.SetDefault("preview.height", 400)
	v.SetDefault("watermark.margin", 30)
	v.SetDefault("watermark.font_size", 36)
	v.SetDefault("watermark.text_color", "#000000")
	v.SetDefault("watermark.text_opacity", 1.0)
	v.SetDefault("watermark.logo_width_ratio", 0.1)
	v.SetDefault("watermark.logo_opacity", 1.0)
	v.SetDefault("output.jpeg_quality", 95)
	v.SetDefault("fonts.dirs", []string{})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
