package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

const (
	auditCollection = "audit_entries"
	maxRecent       = 500
)

// AuditRepository persists audit entries and serves the activity screen.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Resource   string             `bson:"resource"`
	Action     string             `bson:"action"`
	RecordID   int                `bson:"record_id"`
	ActorEmail string             `bson:"actor_email,omitempty"`
	ActorID    int                `bson:"actor_id,omitempty"`
	At         time.Time          `bson:"at"`
}

// EnsureIndexes creates the descending time index used by Recent.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("audit index: %w", err)
	}
	return nil
}

func (r *AuditRepository) Name() string { return "mongo" }

// Write inserts one entry.
func (r *AuditRepository) Write(ctx context.Context, e domain.AuditEntry) error {
	doc := auditDoc{
		Resource:   e.Resource,
		Action:     string(e.Action),
		RecordID:   e.RecordID,
		ActorEmail: e.ActorEmail,
		ActorID:    e.ActorID,
		At:         e.At.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > maxRecent {
		limit = maxRecent
	}
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit entries: %w", err)
	}
	defer cur.Close(ctx)

	var docs []auditDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit entries: %w", err)
	}

	out := make([]domain.AuditEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.AuditEntry{
			Resource:   d.Resource,
			Action:     domain.AuditAction(d.Action),
			RecordID:   d.RecordID,
			ActorEmail: d.ActorEmail,
			ActorID:    d.ActorID,
			At:         d.At,
		})
	}
	return out, nil
}
