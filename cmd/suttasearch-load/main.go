// Command suttasearch-load ingests a JSONL paragraph corpus into the
// document index: it embeds each paragraph's multilingual concatenation and
// batch-upserts documents with their external vectors.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/palitext/suttasearch/internal/config"
	"github.com/palitext/suttasearch/internal/domain"
	"github.com/palitext/suttasearch/internal/embedding"
	"github.com/palitext/suttasearch/internal/index/weaviate"
	logpkg "github.com/palitext/suttasearch/internal/logger"
)

const defaultBatchSize = 64

// paragraphRecord is one JSONL corpus line. doc_id is optional and derived
// from book_id/para_id when absent.
type paragraphRecord struct {
	DocID                string `json:"doc_id"`
	BookID               string `json:"book_id"`
	ParaID               string `json:"para_id"`
	PaliParagraph        string `json:"pali_paragraph"`
	TranslationParagraph string `json:"translation_paragraph"`
}

func main() {
	var (
		file      = flag.String("file", "", "path to the JSONL corpus file")
		env       = flag.String("env", config.GetEnv(), "config environment (local, dev, prod)")
		batchSize = flag.Int("batch", defaultBatchSize, "documents per embedding/upsert batch")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: suttasearch-load -file corpus.jsonl [-env local] [-batch 64]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(*env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	embClient := embedding.NewClient(embedding.Config{
		BaseURL: cfg.Embedding.URL,
		Timeout: time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	index := weaviate.NewClient(weaviate.Config{
		BaseURL: cfg.Index.URL,
		Class:   cfg.Index.Class,
		Timeout: time.Duration(cfg.Index.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	ctx := context.Background()
	if err := index.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure index schema", zap.Error(err))
	}

	f, err := os.Open(*file)
	if err != nil {
		logger.Fatal("Failed to open corpus file", zap.String("file", *file), zap.Error(err))
	}
	defer func() { _ = f.Close() }()

	loader := &loader{
		embed:     embClient,
		index:     index,
		batchSize: *batchSize,
		logger:    logger,
	}
	total, err := loader.run(ctx, f)
	if err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}

	logger.Info("Ingestion complete",
		zap.String("file", *file),
		zap.Int("documents", total),
		zap.String("class", cfg.Index.Class),
	)
}

// embedder is the embedding surface the loader needs.
type embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// upserter is the index surface the loader needs.
type upserter interface {
	BatchUpsert(ctx context.Context, docs []domain.Document) error
}

type loader struct {
	embed     embedder
	index     upserter
	batchSize int
	logger    *zap.Logger
}

// run streams JSONL records through embed+upsert in batches. Returns the
// number of documents ingested.
func (l *loader) run(ctx context.Context, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	// Paragraphs can be long; lift the default 64K line limit.
	scanner.Buffer(make([]byte, 0, 1024*1024), 4*1024*1024)

	batch := make([]domain.Document, 0, l.batchSize)
	total := 0
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec paragraphRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return total, fmt.Errorf("line %d: parse record: %w", lineNo, err)
		}
		doc, err := documentFromRecord(rec)
		if err != nil {
			return total, fmt.Errorf("line %d: %w", lineNo, err)
		}

		batch = append(batch, doc)
		if len(batch) >= l.batchSize {
			if err := l.flush(ctx, batch); err != nil {
				return total, err
			}
			total += len(batch)
			l.logger.Info("Batch ingested", zap.Int("total", total))
			batch = batch[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return total, fmt.Errorf("read corpus: %w", err)
	}

	if len(batch) > 0 {
		if err := l.flush(ctx, batch); err != nil {
			return total, err
		}
		total += len(batch)
	}
	return total, nil
}

// flush embeds the batch's multilingual concatenations and upserts the
// documents with the returned vectors.
func (l *loader) flush(ctx context.Context, batch []domain.Document) error {
	texts := make([]string, len(batch))
	for i, d := range batch {
		texts[i] = d.MultilingualConcat
	}

	vectors, err := l.embed.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embed batch: got %d vectors for %d documents", len(vectors), len(batch))
	}
	for i := range batch {
		batch[i].Vector = vectors[i]
	}

	if err := l.index.BatchUpsert(ctx, batch); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}

// documentFromRecord validates a corpus record and derives doc_id and the
// multilingual concatenation (Pali first, then translation).
func documentFromRecord(rec paragraphRecord) (domain.Document, error) {
	if rec.BookID == "" || rec.ParaID == "" {
		return domain.Document{}, fmt.Errorf("book_id and para_id are required")
	}
	if rec.PaliParagraph == "" && rec.TranslationParagraph == "" {
		return domain.Document{}, fmt.Errorf("record has no text")
	}

	docID := rec.DocID
	if docID == "" {
		docID = rec.BookID + ":" + rec.ParaID
	}

	parts := make([]string, 0, 2)
	if rec.PaliParagraph != "" {
		parts = append(parts, rec.PaliParagraph)
	}
	if rec.TranslationParagraph != "" {
		parts = append(parts, rec.TranslationParagraph)
	}

	return domain.Document{
		DocID:                docID,
		BookID:               rec.BookID,
		ParaID:               rec.ParaID,
		PaliParagraph:        rec.PaliParagraph,
		TranslationParagraph: rec.TranslationParagraph,
		MultilingualConcat:   strings.Join(parts, "\n"),
	}, nil
}
