package storage

import (
	"context"

	"turadex/internal/model"
)

// PositionSink persists position snapshots.
type PositionSink interface {
	PutPositionSnapshots(ctx context.Context, snapshots []model.PositionSnapshot) error
}

// QuoteSink persists mint quotes.
type QuoteSink interface {
	PutQuotes(ctx context.Context, quotes []model.MintQuote) error
}
