package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

const identityEventsCollection = "identity_events"

// IdentityEventRepository implements ports.IdentityEventRepository using MongoDB.
type IdentityEventRepository struct {
	db *mongo.Database
}

// NewIdentityEventRepository creates a new IdentityEventRepository.
func NewIdentityEventRepository(db *mongo.Database) ports.IdentityEventRepository {
	return &IdentityEventRepository{db: db}
}

// EnsureIndexes creates the unique delivery index and the subject lookup index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(identityEventsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "delivery_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_delivery_id"),
		},
		{
			Keys:    bson.D{{Key: "subject", Value: 1}, {Key: "occurred_at", Value: -1}},
			Options: options.Index().SetName("subject_occurred_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}
	return nil
}

// InsertEvent persists a lifecycle delivery to the identity_events audit
// collection. A retried delivery hits the unique index and is ignored.
func (r *IdentityEventRepository) InsertEvent(ctx context.Context, event *domain.IdentityEvent) error {
	doc := bson.M{
		"delivery_id":  event.DeliveryID,
		"type":         string(event.Type),
		"subject":      event.Subject,
		"occurred_at":  event.OccurredAt.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.Email != "" {
		doc["email"] = event.Email
	}
	if len(event.Payload) > 0 {
		doc["payload"] = string(event.Payload)
	}

	_, err := r.db.Collection(identityEventsCollection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}
