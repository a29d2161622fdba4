package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	"bookly/cfg"
	"bookly/internal/app/api"
	"bookly/internal/app/assemble"
	"bookly/internal/app/convert"
	"bookly/internal/app/metrics"
	"bookly/internal/app/store"
	"bookly/pkg/ffmpeg"
	"bookly/pkg/speech"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "cfg-path", "cfg/cfg.yaml", "path to config file")
	flag.Parse()

	var cfg *cfg.Config
	if cfgFile, err := os.ReadFile(cfgPath); err != nil {
		log.Fatalf("can't open %s file: %v", cfgPath, err)
	} else if err = yaml.Unmarshal(cfgFile, &cfg); err != nil {
		log.Fatal("can't unmarshal cfg.yaml file", err)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Speech.APIKey = key
	}
	if cfg.Speech.APIKey == "" {
		log.Fatal("speech api key is not set (cfg speech.api_key or OPENAI_API_KEY)")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	metrics.RegisterMetrics(reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpClient := &http.Client{
		Timeout: 2 * time.Minute,
	}

	speechClient := speech.New(httpClient, &cfg.Speech)

	artifacts, err := store.New(&cfg.Store)
	if err != nil {
		log.Fatal("failed to init artifact store: ", err)
	}

	var ffmpegClient *ffmpeg.Client
	if cfg.Ffmpeg.Remux {
		ffmpegClient = ffmpeg.New(&cfg.Ffmpeg)
	}

	assembler := assemble.New(logger.WithGroup("assemble"), ffmpegClient)

	converter := convert.NewService(&cfg.Convert, logger.WithGroup("convert"), speechClient, assembler, artifacts, ffmpegClient)

	api := api.NewAPI(&cfg.Api, logger.WithGroup("api"), converter, artifacts, reg)

	router := api.NewRouter()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	srv := &http.Server{
		Addr:           ":" + strconv.Itoa(cfg.Api.Port),
		Handler:        router,
		MaxHeaderBytes: 20971520,
	}

	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()

		logger.Info("Starting server")

		if err := srv.ListenAndServe(); err != nil {
			logger.Error("ListenAndServe finished", "err", err)
		}
	}()

	select {
	case <-ctx.Done():
	case <-stop:
		logger.Info("Interrupt triggerred")
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}

	wg.Wait()
}
