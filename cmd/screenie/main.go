package main

import (
	"github.com/szxp/screenie"
	"github.com/szxp/screenie/event"
	"github.com/szxp/screenie/goimage"
	"github.com/szxp/screenie/imagemagick"
	"github.com/szxp/screenie/nfntresize"
	"github.com/szxp/screenie/sizefit"

	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
)

// version will be set while building
var version string

// buildTime will be set while building
var buildTime string

const (
	envHTTPAddr = "SPACE_HTTP_ADDR"
	envConfig   = "SPACE_CONFIG"
)

func main() {
	conf, err := loadConfig()

	logger := hclog.New(&hclog.LoggerOptions{
		Output:          os.Stdout,
		Level:           hclog.LevelFromString(conf.Server.LogLevel),
		IncludeLocation: true,
	}).With("appVersion", version)

	logger.Info("Build info", "time", buildTime)
	if err != nil {
		logger.Error("Failed to load config. Exit now", "err", err)
		os.Exit(1)
	}

	err = initialize(logger, conf)
	if err != nil {
		logger.Error("Failed to initialize. Exit now", "err", err)
		os.Exit(1)
	}
	logger.Info("Exit normally")
}

func loadConfig() (screenie.Config, error) {
	path := os.Getenv(envConfig)
	if path == "" {
		return screenie.DefaultConfig(), nil
	}
	conf, err := screenie.LoadConfig(path)
	if err != nil {
		return screenie.DefaultConfig(), err
	}
	return conf, nil
}

func newResizer(name string, logger hclog.Logger) screenie.ImageResizer {
	switch name {
	case screenie.ResizerImageMagick:
		ver, err := imagemagick.Version()
		if err != nil {
			logger.Warn("ImageMagick not available", "error", err)
		} else {
			logger.Debug("ImageMagick", "version", ver)
		}
		return &imagemagick.ImageResizer{}
	case screenie.ResizerNfnt:
		return nfntresize.NewImageResizer()
	}
	return goimage.NewImageResizer()
}

func initialize(logger hclog.Logger, conf screenie.Config) error {
	httpAddr := getenv(envHTTPAddr, conf.Server.Addr)

	thumbnail, err := conf.ThumbnailConfig()
	if err != nil {
		return err
	}
	fitter, err := sizefit.NewFitterFromConfig(thumbnail)
	if err != nil {
		return err
	}

	handler, err := screenie.NewServer(screenie.ServerConfig{
		SourceDir:        conf.Server.SourceDir,
		ThumbnailDir:     conf.Server.ThumbnailDir,
		AllowedExts:      conf.Server.AllowedExts,
		Thumbnail:        thumbnail,
		MaxThumbnailSize: conf.MaxThumbnailSize(),
		Resizer:          newResizer(conf.Server.Resizer, logger.Named("resizer")),
		Logger:           logger.Named("HTTP server"),
	})
	if err != nil {
		return err
	}

	broker := event.NewBroker(8, logger.Named("event"))
	err = handler.Listen(broker)
	if err != nil {
		return err
	}
	fitter.OnChanged(func(cfg sizefit.Config) {
		broker.Publish(event.ThumbnailConfigChanged, cfg)
	})

	srv := &http.Server{
		Addr:    httpAddr,
		Handler: handler,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		for sig := range sigChan {
			logger.Info("Signal received", "sig", sig)
			if sig == syscall.SIGHUP {
				reload(logger, fitter)
				continue
			}

			if err := srv.Shutdown(context.Background()); err != nil {
				logger.Error("HTTP server Shutdown", "error", err)
			}
			close(idleConnsClosed)
			return
		}
	}()

	logger.Info("Listen", "addr", httpAddr, "thumbnail", thumbnail.Key())
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}

	<-idleConnsClosed
	return nil
}

// reload re-reads the config file and applies its thumbnail section.
func reload(logger hclog.Logger, fitter *sizefit.Fitter) {
	conf, err := loadConfig()
	if err != nil {
		logger.Error("Failed to reload config", "error", err)
		return
	}
	changed, err := conf.ApplyThumbnailConfig(fitter)
	if err != nil {
		logger.Error("Failed to apply thumbnail config", "error", err)
		return
	}
	logger.Info("Config reloaded", "thumbnailChanged", changed)
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}
