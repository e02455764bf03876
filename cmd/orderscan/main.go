package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pwojcik-dev/orderscan/internal/analysis"
	"github.com/pwojcik-dev/orderscan/internal/common"
	"github.com/pwojcik-dev/orderscan/internal/export"
	"github.com/pwojcik-dev/orderscan/internal/ingest"
	"github.com/pwojcik-dev/orderscan/internal/ocr"
	"github.com/pwojcik-dev/orderscan/internal/orderparse"
	processor "github.com/pwojcik-dev/orderscan/internal/pipeline"
	"github.com/pwojcik-dev/orderscan/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		modeFlag   = flag.String("mode", "text", "document path: text (embedded text layer) or scan (rasterize + OCR)")
		exportFlag = flag.String("export", "txt", "export format: csv, txt, json or xlsx")
		exportDir  = flag.String("out", "", "directory for export files (empty disables export)")
		watchDir   = flag.String("watch", "", "watch a directory instead of processing arguments")
		noAnalyze  = flag.Bool("no-analyze", false, "skip remote analysis even when credentials are configured")
	)
	flag.Parse()

	mode, err := processor.ParseMode(*modeFlag)
	if err != nil {
		logger.Error("invalid -mode", "value", *modeFlag, "error", err)
		os.Exit(2)
	}
	format, err := export.ParseFormat(*exportFlag)
	if err != nil {
		logger.Error("invalid -export", "value", *exportFlag, "error", err)
		os.Exit(2)
	}
	if *watchDir == "" && flag.NArg() == 0 {
		logger.Error("usage", "cmd", "orderscan [-mode text|scan] [-export csv|txt|json|xlsx] [-out DIR] [-watch DIR | FILE|DIR...]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := store.Open(ctx, cfg.Store.Path, logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("close store", "error", cerr)
		}
	}()

	var analyzer processor.Analyzer
	if !*noAnalyze {
		if err := cfg.Analysis.Validate(); err != nil {
			logger.Warn("analysis disabled", "reason", err)
		} else {
			analyzer = analysis.NewOrchestrator(analysis.NewClient(cfg.Analysis, logger), cfg.Analysis, logger)
		}
	}

	ocrx := ocr.NewExtractor(cfg.OCR, logger)
	textStage := processor.NewTextStage(ocrx, orderparse.NewExtractor(logger), analyzer, logger)
	scanStage := processor.NewScanStage(ocrx, analyzer, logger)

	proc := processor.NewProcessor(textStage, scanStage, st, export.NewService(logger), logger)
	proc.Format = format
	proc.ExportTo = *exportDir

	start := time.Now()
	if *watchDir != "" {
		wc := ingest.WatchConfig{
			Roots:       []string{*watchDir},
			InitialScan: true,
			Debounce:    cfg.Ingest.Debounce,
		}
		logger.Info("watch.start", "root", *watchDir, "mode", string(mode))
		if err := proc.RunWatch(ctx, wc, mode); err != nil && ctx.Err() == nil {
			logger.Error("watch failed", "error", err)
			os.Exit(1)
		}
		return
	}

	failed := 0
	for _, path := range flag.Args() {
		var err error
		if fi, statErr := os.Stat(path); statErr == nil && fi.IsDir() {
			err = proc.ProcessDir(ctx, path, mode)
		} else {
			err = proc.ProcessPath(ctx, path, mode)
		}
		if err != nil {
			logger.Error("processing failed", "path", path, "error", err)
			failed++
		}
	}
	logger.Info("done",
		"files", flag.NArg(),
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if failed > 0 {
		os.Exit(1)
	}
}
