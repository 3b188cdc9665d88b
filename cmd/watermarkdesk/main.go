// Package main launches the desktop watermarking app
package main

import (
	"log"
	"os"

	"github.com/UnendingLoop/WatermarkDesk/internal/compositor"
	"github.com/UnendingLoop/WatermarkDesk/internal/config"
	"github.com/UnendingLoop/WatermarkDesk/internal/fontlib"
	"github.com/UnendingLoop/WatermarkDesk/internal/session"
	"github.com/UnendingLoop/WatermarkDesk/internal/storage/filestorage"
	"github.com/rs/zerolog"
)

func main() {
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %s\nExiting app...", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	fonts := fontlib.New(appConfig.Fonts.Dirs)
	store := filestorage.New(appConfig.Output.JPEGQuality)
	comp := compositor.New(fonts, appConfig.Watermark.Margin)
	sess := session.New(store, comp, appConfig.Watermark.LogoWidthRatio, logger)

	ui := newUI(appConfig, sess, fonts, logger)
	ui.Run()
}
