package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"qaframe/internal/config"
	"qaframe/internal/frame"
	"qaframe/internal/metrics"
	"qaframe/internal/metrics/prompush"
	"qaframe/internal/reader"
	"qaframe/internal/storage"
	"qaframe/internal/storage/sqlite"
)

// main is the entry point for the qaframe binary. It loads a comparison
// config, materializes the left and right frames, and reports whether they
// are identical. Exit code 0 means the frames match, 1 means they differ or
// something went wrong.
func main() {
	var (
		cfgPath           string
		validate          bool
		snapshot          string
		metricsBackendFlg string
		pushGatewayURLFlg string
	)

	flag.StringVar(&cfgPath, "config", "configs/sample.json", "comparison config JSON path")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.StringVar(&snapshot, "snapshot", "", "SQLite DSN; when set, both frames are persisted there")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (e.g. pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	defer f.Close()

	var cfg config.Compare
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		fatalf("decode config: %v", err)
	}

	issues := config.Validate(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	// Decide metrics backend: flag → env → default.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend("qaframe", gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			if *verbose {
				log.Printf("metrics: url=%v, backend=%v", gwURL, backendName)
			}
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "", "none":
		// metrics disabled; nop backend remains

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("compare: kind=%s left=%s right=%s columns=%d",
			cfg.Kind, cfg.Left, cfg.Right, len(cfg.Schema))
	}

	left, right, err := reader.Frames(ctx, &cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer left.Release()
	defer right.Release()

	if snapshot != "" {
		if err := persist(ctx, snapshot, left, right); err != nil {
			log.Fatalf("%v", err)
		}
	}

	leftFP, err := left.Fingerprint()
	if err != nil {
		log.Fatalf("compare: left: %v", err)
	}
	rightFP, err := right.Fingerprint()
	if err != nil {
		log.Fatalf("compare: right: %v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}

	fmt.Printf("left:  %d rows, fingerprint %016x\n", left.NumRows(), leftFP)
	fmt.Printf("right: %d rows, fingerprint %016x\n", right.NumRows(), rightFP)
	if leftFP != rightFP {
		fmt.Println("frames differ")
		os.Exit(1)
	}
	fmt.Println("frames match")
}

// persist writes both frames into the given SQLite database as tables named
// left and right.
func persist(ctx context.Context, dsn string, left, right *frame.Lazy) error {
	var sink storage.Sink
	sink, err := sqlite.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer sink.Close()

	for name, f := range map[string]*frame.Lazy{"left": left, "right": right} {
		n, err := sink.Snapshot(ctx, name, f)
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", name, err)
		}
		log.Printf("snapshot: wrote %d rows to table %s", n, name)
	}
	return nil
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
