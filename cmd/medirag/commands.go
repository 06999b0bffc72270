package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/medirag"
	"github.com/poiesic/medirag/chunking"
	"github.com/poiesic/medirag/config"
	"github.com/poiesic/medirag/core"
	"github.com/poiesic/medirag/ingestion"
	"github.com/poiesic/medirag/reembed"
	"github.com/poiesic/medirag/retrieval"
	"github.com/poiesic/medirag/server"
)

func chunksCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one directory or file is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("max-chunk-chars") {
		cfg.Chunking.MaxChunkChars = c.Int("max-chunk-chars")
	}

	files, err := chunking.CollectFiles(c.Args().Slice()...)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no XML documents found")
	}

	if c.Bool("meta") {
		return printMetadata(c.App.Writer, files, c.Bool("json"))
	}

	chunker, err := chunking.NewPipeline(cfg.ChunkingOptions()...)
	if err != nil {
		return err
	}
	defer chunker.Release()

	batch, err := chunker.ChunkFiles(c.Context, files)
	if err != nil {
		return err
	}
	for _, f := range batch.Files {
		if f.Failed() {
			fmt.Fprintf(c.App.ErrWriter, "skipping %s: %v\n", f.Path, f.Err)
		}
	}

	chunks := batch.Chunks()
	if c.Bool("json") {
		if chunks == nil {
			chunks = []core.Chunk{}
		}
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}

	for i, chunk := range chunks {
		fmt.Fprintf(c.App.Writer, "[%d] %s\n", i+1, retrieval.FormatCitation(chunk.Key()))
		fmt.Fprintln(c.App.Writer, chunk.Text)
		fmt.Fprintln(c.App.Writer, strings.Repeat("-", 40))
	}
	fmt.Fprintf(c.App.Writer, "Total chunks: %d\n", len(chunks))
	return nil
}

func printMetadata(w io.Writer, files []string, asJSON bool) error {
	metas := make([]chunking.Metadata, 0, len(files))
	for _, path := range files {
		doc, err := chunking.ReadFile(path)
		if err != nil {
			slog.Warn("skipping unreadable document", "path", path, "err", err)
			continue
		}
		metas = append(metas, chunking.ExtractMetadata(doc))
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(metas)
	}
	for _, m := range metas {
		fmt.Fprintf(w, "%s\n", m.Source)
		fmt.Fprintf(w, "  Title:     %s\n", m.Title)
		fmt.Fprintf(w, "  Code:      %s\n", m.DocumentID)
		fmt.Fprintf(w, "  Date:      %s\n", m.PublicationDate)
		fmt.Fprintf(w, "  Countries: %s\n", strings.Join(m.CountryCodes, ", "))
		fmt.Fprintf(w, "  Authors:   %s\n", strings.Join(m.Authors, "; "))
	}
	return nil
}

func openDatabase(cfg *config.Config, opts ...medirag.DatabaseOption) (*medirag.Database, error) {
	opts = append([]medirag.DatabaseOption{
		medirag.WithAIConfig(cfg.AIConfig()),
		medirag.WithLogger(slog.Default()),
	}, opts...)
	db, err := medirag.NewDatabase(cfg.Store.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", cfg.Store.Path, err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one directory or file is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("pool-size") {
		cfg.Ingestion.PoolSize = c.Int("pool-size")
	}
	if c.IsSet("batch-size") {
		cfg.Ingestion.BatchSize = c.Int("batch-size")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	chunker, err := db.NewChunker(cfg.ChunkingOptions()...)
	if err != nil {
		return err
	}
	defer chunker.Release()

	pipeline, err := db.NewIngestionPipeline(chunker,
		ingestion.WithPoolSize(cfg.Ingestion.PoolSize),
		ingestion.WithBatchSize(cfg.Ingestion.BatchSize),
		ingestion.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		ingestion.WithProgress(c.App.ErrWriter),
	)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	fmt.Fprintf(c.App.ErrWriter, "Store: %s\n", cfg.Store.Path)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(c.App.ErrWriter)

	report, err := pipeline.Ingest(c.Context, c.Args().Slice()...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Files: %d stored, %d empty, %d failed\n",
		report.Count(ingestion.StatusStored),
		report.Count(ingestion.StatusEmpty),
		report.Count(ingestion.StatusFailed))
	fmt.Fprintf(c.App.Writer, "Chunks: %d\n", report.Chunks())
	fmt.Fprintf(c.App.Writer, "Elapsed: %s\n", report.Elapsed.Round(time.Millisecond))

	if err := report.Err(); err != nil {
		return cli.Exit(fmt.Sprintf("some documents failed:\n%v", err), 1)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("a question is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("k") {
		cfg.Retrieval.K = c.Int("k")
	}

	db, err := openDatabase(cfg, medirag.WithReadOnly())
	if err != nil {
		return err
	}
	defer db.Close()

	orch, err := db.NewOrchestrator(cfg.SearchOptions(), retrieval.WithDefaultK(cfg.Retrieval.K))
	if err != nil {
		return err
	}

	var monitor *explainMonitor
	if c.Bool("explain") {
		monitor = newExplainMonitor(c.App.ErrWriter)
	}

	var result *core.RetrievalResult
	if monitor != nil {
		result, err = orch.AskWithMonitor(c.Context, question, 0, monitor)
	} else {
		result, err = orch.Ask(c.Context, question, 0)
	}
	if err != nil {
		if !errors.Is(err, core.ErrGeneration) {
			return err
		}
		slog.Error("answer generation failed", "err", err)
	}

	fmt.Fprintln(c.App.Writer, result.Answer)
	if len(result.Sources) > 0 {
		fmt.Fprintln(c.App.Writer)
		fmt.Fprintln(c.App.Writer, "Quellen:")
		for _, source := range result.Sources {
			fmt.Fprintf(c.App.Writer, "  - %s\n", source)
		}
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}

	db, err := openDatabase(cfg, medirag.WithDetachedStore())
	if err != nil {
		return err
	}
	defer db.Close()

	orch, err := db.NewOrchestrator(cfg.SearchOptions(), retrieval.WithDefaultK(cfg.Retrieval.K))
	if err != nil {
		return err
	}
	srv, err := server.NewServer(orch,
		server.WithIndexCache(db.IndexCache()),
		server.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.Bool("preload") {
		if _, err := db.IndexCache().Get(ctx); err != nil {
			return err
		}
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	slog.Info("starting medirag", "addr", cfg.Server.Addr, "store", cfg.Store.Path)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("embedding-host") {
		cfg.AI.EmbeddingHost = c.String("embedding-host")
	}
	cfg.AI.EmbeddingModel = c.String("embedding-model")

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		MaxRetryDelay:  reembed.DefaultConfig().MaxRetryDelay,
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	reembedder, err := db.NewReembedder(reembedConfig, c.App.ErrWriter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Store: %s\n", cfg.Store.Path)
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.AI.EmbeddingHost)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(c.App.ErrWriter)

	summary, err := reembedder.Run(c.Context)
	if err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Reembedded %d chunks in %d batches (%s)\n",
		summary.Chunks, summary.Batches, summary.Elapsed.Round(time.Millisecond))
	return nil
}
