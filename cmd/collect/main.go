package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/ajwill85/hri-3.0/internal/config"
	"github.com/ajwill85/hri-3.0/internal/processor"
	"github.com/ajwill85/hri-3.0/internal/scheduler"
	"github.com/ajwill85/hri-3.0/internal/storage"
)

// 一个仅执行一轮聚合的命令行入口：结果 JSON 输出到 stdout，日志走 stderr
func main() {
	persist := flag.Bool("persist", false, "save the run to postgres/redis and S3 when configured")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	ctx := context.Background()
	var sinks []scheduler.Sink
	if *persist {
		store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("init store failed: %v", err)
		}
		defer store.Close()
		sinks = append(sinks, store)

		exporter, err := storage.NewS3ExporterFromConfig(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("init s3 exporter failed: %v", err)
		}
		if exporter != nil {
			sinks = append(sinks, exporter)
		}
	}

	s := scheduler.NewFromConfig(cfg, &http.Client{}, sinks...)
	feed, err := s.Run(ctx)
	if err != nil {
		fail(err)
	}
	writeJSON(feed)
}

func fail(err error) {
	log.Printf("collect failed: %v", err)
	writeJSON(processor.NewFailure("Failed to fetch news", err, config.Now(), config.Version))
	os.Exit(1)
}

func writeJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("encode output failed: %v", err)
	}
}
