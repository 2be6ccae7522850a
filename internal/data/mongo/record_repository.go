// Package mongo provides the MongoDB implementation of the append-only
// ledger record store.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/homeplan-finance-core/internal/domain/ledger"
)

const (
	// RecordCollectionName is the name of the ledger record collection in MongoDB
	RecordCollectionName = "ledger_records"
)

// RecordRepository implements the ledger.Repository interface for MongoDB
type RecordRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewRecordRepository creates a new MongoDB ledger record repository
func NewRecordRepository(logger *slog.Logger, db *mongo.Database) ledger.Repository {
	return &RecordRepository{
		db:     db,
		logger: logger,
	}
}

// CreateMany appends the records of one transfer after checking for
// duplicates. Returns ErrDuplicateRecord if records with the same transfer
// ID already exist, which keeps outbox replays idempotent.
func (r *RecordRepository) CreateMany(ctx context.Context, records []*ledger.Record) error {
	if len(records) == 0 {
		return errors.New("no ledger records to create")
	}

	collection := r.db.Collection(RecordCollectionName)
	transferID := records[0].TransferID

	existing, err := r.GetByTransferID(ctx, transferID)
	if err != nil && !errors.Is(err, ledger.ErrRecordNotFound{}) {
		r.logger.Error("Failed to check for existing ledger records",
			"transfer_id", transferID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing ledger records: %w", err)
	}

	if len(existing) > 0 {
		return ledger.ErrDuplicateRecord{TransferID: transferID}
	}

	docs := make([]interface{}, len(records))
	for i, record := range records {
		docs[i] = record
	}

	if _, err := collection.InsertMany(ctx, docs); err != nil {
		r.logger.Error("Failed to create ledger records",
			"transfer_id", transferID.String(),
			"error", err)
		return fmt.Errorf("failed to create ledger records: %w", err)
	}

	return nil
}

// GetByTransferID retrieves both sides of a transfer.
// Returns ErrRecordNotFound if no records exist for the given transfer.
func (r *RecordRepository) GetByTransferID(ctx context.Context, transferID uuid.UUID) ([]*ledger.Record, error) {
	collection := r.db.Collection(RecordCollectionName)

	filter := bson.M{"transfer_id": transferID}
	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to get ledger records",
			"transfer_id", transferID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get ledger records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*ledger.Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode ledger records: %w", err)
	}

	if len(records) == 0 {
		return nil, ledger.ErrRecordNotFound{TransferID: transferID}
	}

	return records, nil
}

// GetByIdempotencyKey retrieves a ledger record using its idempotency key.
// Returns nil if no record exists, enabling idempotent transfer processing.
func (r *RecordRepository) GetByIdempotencyKey(ctx context.Context, idempotencyKey string) (*ledger.Record, error) {
	if idempotencyKey == "" {
		return nil, errors.New("idempotency key cannot be empty")
	}

	collection := r.db.Collection(RecordCollectionName)

	filter := bson.M{"idempotency_key": idempotencyKey}
	var record ledger.Record
	err := collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // No record found with this idempotency key
		}
		r.logger.Error("Failed to get ledger record by idempotency key",
			"idempotency_key", idempotencyKey,
			"error", err)
		return nil, fmt.Errorf("failed to get ledger record by idempotency key: %w", err)
	}

	return &record, nil
}

// GetByAccountID retrieves paginated ledger records for an account.
// Results are sorted by creation time in descending order (newest first).
func (r *RecordRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*ledger.Record, error) {
	collection := r.db.Collection(RecordCollectionName)

	filter := bson.M{"account_id": accountID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}). // Sort by created_at in descending order
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get ledger records",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get ledger records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*ledger.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode ledger records",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode ledger records: %w", err)
	}

	return records, nil
}

// CountByAccountID counts the total number of ledger records for an account
func (r *RecordRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	collection := r.db.Collection(RecordCollectionName)

	filter := bson.M{"account_id": accountID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count ledger records",
			"account_id", accountID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count ledger records: %w", err)
	}

	return count, nil
}
