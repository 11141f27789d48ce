package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"ricevute/internal/amqp"
	"ricevute/internal/artifact"
	"ricevute/internal/core"
	"ricevute/internal/imaging"
	"ricevute/internal/interpret"
	"ricevute/internal/ocr"
	"ricevute/internal/remote"
)

// ocrErrorMarker prefixes RawText when a fatal stage fails. Callers branch
// on this prefix instead of a separate status field; kept as documented
// behavior from the earlier system rather than silently redesigned.
const ocrErrorMarker = "OCR Error: "

// SyncPublisher hands failed or deferred remote syncs to the replay queue.
type SyncPublisher interface {
	PublishReceiptSync(ctx context.Context, msg *amqp.ReceiptSyncMessage) error
}

// IngestionService runs one receipt through the pipeline:
// normalize, name and save locally, OCR, interpret, synchronize remote.
// Local save always precedes the remote upload; OCR always precedes
// categorization. No stage retries; remote failure is non-fatal.
type IngestionService struct {
	normalizer  *imaging.Normalizer
	store       *artifact.Store
	extractor   ocr.TextExtractor
	interpreter *interpret.Interpreter
	tree        *remote.Tree  // nil disables remote sync
	publisher   SyncPublisher // nil disables replay publishing
}

type IngestRequest struct {
	Data []byte
	// Date stamps the artifact name; zero means today.
	Date core.Date
}

// IngestResult is the caller-facing contract. RawText carries the OCR
// error marker prefix when ingestion failed; SyncError is set when only
// the remote stage failed and the rest of the result still stands.
type IngestResult struct {
	RawText    string
	LocalPath  string
	Category   string
	Amount     core.Money
	VendorLine string
	Synced     bool
	SyncError  string
}

func NewIngestionService(
	normalizer *imaging.Normalizer,
	store *artifact.Store,
	extractor ocr.TextExtractor,
	interpreter *interpret.Interpreter,
	tree *remote.Tree,
	publisher SyncPublisher,
) *IngestionService {
	return &IngestionService{
		normalizer:  normalizer,
		store:       store,
		extractor:   extractor,
		interpreter: interpreter,
		tree:        tree,
		publisher:   publisher,
	}
}

func (s *IngestionService) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	date := req.Date
	if date.IsZero() {
		now := time.Now()
		date = core.NewDate(now.Year(), int(now.Month()), now.Day())
	}

	img, err := s.normalizer.Normalize(req.Data)
	if err != nil {
		return failed(err), fmt.Errorf("normalize: %w", err)
	}

	base := "receipt_" + date.Format("02-01-2006")
	localPath, err := s.store.Save(base, img.Ext(), img.Data)
	if err != nil {
		return failed(err), fmt.Errorf("save artifact: %w", err)
	}

	text, err := s.extractor.ExtractText(ctx, img.Data, img.Format)
	if err != nil {
		res := failed(err)
		res.LocalPath = localPath
		return res, fmt.Errorf("extract text: %w", err)
	}

	receipt := s.interpreter.Interpret(ctx, text)

	result := IngestResult{
		RawText:    text,
		LocalPath:  localPath,
		Category:   receipt.Category,
		Amount:     receipt.Amount,
		VendorLine: receipt.VendorLine,
	}

	s.synchronize(ctx, date.Year(), img.Data, &result)
	return result, nil
}

// synchronize uploads the artifact to Receipts/{year}/{category}. A
// failure is reported on the result, not returned: a saved, interpreted
// receipt with a failed upload is a partial success, and the replay queue
// picks the upload up when configured.
func (s *IngestionService) synchronize(ctx context.Context, year int, data []byte, result *IngestResult) {
	filename := filepath.Base(result.LocalPath)

	if s.tree != nil {
		_, err := s.tree.UploadReceipt(ctx, year, result.Category, filename, data)
		if err == nil {
			result.Synced = true
			return
		}
		result.SyncError = err.Error()
		slog.WarnContext(ctx, "Remote sync failed, keeping local result",
			"path", result.LocalPath,
			"error", err)
	}

	if s.publisher == nil {
		return
	}
	msg := amqp.NewReceiptSyncMessage(result.LocalPath, year, result.Category, filename)
	if err := s.publisher.PublishReceiptSync(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync replay message",
			"path", result.LocalPath,
			"error", err)
	}
}

func failed(err error) IngestResult {
	return IngestResult{
		RawText:  ocrErrorMarker + err.Error(),
		Category: core.CategoryMiscellaneous,
		Amount:   core.Money{Cents: core.SentinelCents},
	}
}
