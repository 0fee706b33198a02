package stockcount

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ValtisD/CardiacStockTracker-sub001/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func auditRecord() AuditRecord {
	return AuditRecord{
		SessionID: "sess-1",
		AppliedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Summary:   ReconciliationSummary{Matched: 3, Transferred: 1},
		AdjustmentKeys: []string{
			"transfer:scan-1",
		},
	}
}

func TestArchiver_Archive(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "audit-bucket").Return(true, nil)
	mockClient.On("PutObject", mock.Anything, "audit-bucket", "sessions/sess-1.json",
		mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

	a := NewArchiver(mockClient, "audit-bucket", zap.NewNop())
	require.NoError(t, a.Archive(context.Background(), auditRecord()))

	mockClient.AssertExpectations(t)
	mockClient.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiver_CreatesBucketOnFirstUse(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "audit-bucket").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "audit-bucket", mock.Anything).Return(nil)
	mockClient.On("PutObject", mock.Anything, "audit-bucket", "sessions/sess-1.json",
		mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

	a := NewArchiver(mockClient, "audit-bucket", zap.NewNop())
	require.NoError(t, a.Archive(context.Background(), auditRecord()))

	mockClient.AssertExpectations(t)
}

func TestArchiver_PutFailureIsReturned(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "audit-bucket").Return(true, nil)
	mockClient.On("PutObject", mock.Anything, "audit-bucket", "sessions/sess-1.json",
		mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, errors.New("connection reset"))

	a := NewArchiver(mockClient, "audit-bucket", zap.NewNop())
	err := a.Archive(context.Background(), auditRecord())
	assert.ErrorContains(t, err, "failed to write audit record")
}
