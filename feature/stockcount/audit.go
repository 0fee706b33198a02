package stockcount

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ValtisD/CardiacStockTracker-sub001/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// AuditRecord is the durable trace of one applied reconciliation.
type AuditRecord struct {
	SessionID      string                `json:"session_id"`
	AppliedAt      time.Time             `json:"applied_at"`
	Summary        ReconciliationSummary `json:"summary"`
	AdjustmentKeys []string              `json:"adjustment_keys"`
}

// Archiver writes reconciliation audit records to object storage.
type Archiver struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewArchiver creates an archiver targeting the given bucket.
func NewArchiver(client storage.Client, bucket string, logger *zap.Logger) *Archiver {
	return &Archiver{client: client, bucket: bucket, logger: logger}
}

// Archive stores the audit record under sessions/<id>.json, creating
// the bucket on first use. Records are keyed by session ID, so a
// retried apply overwrites its own record rather than duplicating it.
func (a *Archiver) Archive(ctx context.Context, rec AuditRecord) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check audit bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create audit bucket: %w", err)
		}
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	objectName := fmt.Sprintf("sessions/%s.json", rec.SessionID)
	_, err = a.client.PutObject(
		ctx,
		a.bucket,
		objectName,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}

	a.logger.Info("Archived reconciliation audit record",
		zap.String("session_id", rec.SessionID),
		zap.String("object", objectName),
	)
	return nil
}
