// Command pdf2docx converts PDFs to editable DOCX documents, escalating from
// direct text-layer extraction to OCR whenever the extracted text fails a
// content-validity check, then audits the finished artifacts.
//
// Usage:
//
//	pdf2docx [flags] <input.pdf> <output.docx>
//	pdf2docx [flags] <input-dir> <output-dir>
//	pdf2docx -mcp
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/h1n054ur/pdf-docx-convertor/convert"
	"github.com/h1n054ur/pdf-docx-convertor/observability"
	"github.com/h1n054ur/pdf-docx-convertor/ocr"
	"github.com/h1n054ur/pdf-docx-convertor/raster"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		workers    = flag.Int("workers", 0, "override worker pool size")
		sizeKB     = flag.Int("size-threshold", -1, "override small-file threshold (KB)")
		dbPath     = flag.String("db", "conversions.db", "conversion event database (empty disables)")
		retention  = flag.Int("db-retention-days", 30, "delete conversion events older than this many days (0 keeps everything)")
		mcpMode    = flag.Bool("mcp", false, "serve conversion tools over MCP stdio")
		listen     = flag.String("listen", "", "optional status HTTP listen address (e.g. :8086)")
	)
	flag.Parse()

	// Logging.
	var lvl slog.Level
	switch env("LOG_LEVEL", "info") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Config: defaults, file, then flag overrides.
	cfg := convert.DefaultConfig()
	if *configPath != "" {
		loaded, err := convert.LoadConfig(*configPath)
		if err != nil {
			slog.Error("config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *workers > 0 {
		cfg.MaxWorkers = *workers
	}
	if *sizeKB >= 0 {
		cfg.SizeThresholdKB = *sizeKB
	}
	cfg.Logger = logger

	// Conversion event store. A failing store degrades to log-only, it never
	// blocks conversions.
	var store *observability.Store
	var db *sql.DB
	if *dbPath != "" {
		var err error
		db, err = sql.Open("sqlite", *dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
		if err == nil {
			store = observability.NewStore(db)
			err = store.Init(ctx)
		}
		if err != nil {
			slog.Warn("event store unavailable, continuing without it", "error", err)
			store = nil
		} else {
			defer db.Close()
			if err := observability.Cleanup(ctx, db, *retention); err != nil {
				slog.Warn("event store cleanup", "error", err)
			}
		}
	}

	batch := convert.NewBatch(cfg,
		ocr.NewTesseractFactory(cfg.Languages...),
		&raster.Pdftoppm{},
		convert.WithBatchEvents(store),
	)

	if *listen != "" {
		go serveStatus(ctx, *listen, store)
	}

	if *mcpMode {
		srv := mcp.NewServer(&mcp.Implementation{
			Name:    "pdf2docx",
			Version: "1.0.0",
		}, nil)
		batch.RegisterMCP(srv)
		slog.Info("MCP stdio server starting")
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("MCP server", "error", err)
			os.Exit(1)
		}
		return
	}

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <input.pdf|input-dir> <output.docx|output-dir>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	input, output := args[0], args[1]

	info, err := os.Stat(input)
	if err != nil {
		slog.Error("input not readable", "path", input, "error", err)
		os.Exit(1)
	}

	if info.IsDir() {
		if err := os.MkdirAll(output, 0755); err != nil {
			slog.Error("create output dir", "path", output, "error", err)
			os.Exit(1)
		}
		started := time.Now()
		results, err := batch.Run(ctx, input, output)
		if err != nil {
			slog.Error("batch", "error", err)
			os.Exit(1)
		}
		slog.Info("checking and fixing files")
		batch.Audit(ctx, results)
		slog.Info("all files processed", "count", len(results), "elapsed", time.Since(started).Round(time.Millisecond))
		return
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Error("create output dir", "path", dir, "error", err)
			os.Exit(1)
		}
	}
	res, err := batch.ConvertFile(ctx, input, output)
	if err != nil {
		slog.Error("conversion", "source", input, "error", err)
		os.Exit(1)
	}
	slog.Info("converted", "source", res.Source, "artifact", res.Artifact)
}

// serveStatus exposes liveness and recent conversion events for operators
// watching a long batch.
func serveStatus(ctx context.Context, addr string, store *observability.Store) {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/events", func(w http.ResponseWriter, req *http.Request) {
		if store == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "event store disabled"})
			return
		}
		limit := 100
		if s := req.URL.Query().Get("limit"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				limit = n
			}
		}
		events, err := store.Recent(req.Context(), limit)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, events)
	})

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	slog.Info("status server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("status server", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
