package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"onboard/internal/onboarding/models"
	"onboard/internal/sentinel"
	id "onboard/pkg/domain"
)

// DefaultCollection is used when no collection name is configured.
const DefaultCollection = "onboarding_applications"

// applicationDocument is the Mongo shape of a record. The applicant content is
// inlined so documents read like the submitted form.
type applicationDocument struct {
	ID                string           `bson:"_id"`
	UserID            string           `bson:"userId"`
	Status            string           `bson:"status"`
	RejectionFeedback string           `bson:"rejectionFeedback,omitempty"`
	Version           int64            `bson:"version"`
	Form              formRecord       `bson:",inline"`
	Documents         []documentRecord `bson:"documents"`
	CreatedAt         time.Time        `bson:"createdAt"`
	UpdatedAt         time.Time        `bson:"updatedAt"`
}

// MongoStore persists applications in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongo(db *mongo.Database, collection string) *MongoStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoStore{coll: db.Collection(collection)}
}

// EnsureIndexes creates the one-record-per-user index and the review listing index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_user"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: -1}},
			Options: options.Index().SetName("status_updated"),
		},
	})
	if err != nil {
		return wrapMongoErr(err, "create indexes")
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, app *models.Application) error {
	if app == nil {
		return fmt.Errorf("application is required")
	}
	if app.Version == 0 {
		app.Version = 1
	}
	if _, err := s.coll.InsertOne(ctx, toApplicationDocument(app)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("application for user %s: %w", app.UserID, sentinel.ErrAlreadyUsed)
		}
		return wrapMongoErr(err, "insert application")
	}
	return nil
}

// Update replaces the document only while it is still at app.Version.
func (s *MongoStore) Update(ctx context.Context, app *models.Application) error {
	if app == nil {
		return fmt.Errorf("application is required")
	}
	doc := toApplicationDocument(app)
	doc.Version = app.Version + 1

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": app.Version}, doc)
	if err != nil {
		return wrapMongoErr(err, "update application")
	}
	if res.MatchedCount == 0 {
		n, err := s.coll.CountDocuments(ctx, bson.M{"_id": doc.ID})
		if err != nil {
			return wrapMongoErr(err, "check application")
		}
		if n == 0 {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("application %s changed since version %d: %w", app.ID, app.Version, sentinel.ErrConflict)
	}
	app.Version++
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	return s.findOne(ctx, bson.M{"_id": appID.String()})
}

func (s *MongoStore) FindByUserID(ctx context.Context, userID id.UserID) (*models.Application, error) {
	return s.findOne(ctx, bson.M{"userId": userID.String()})
}

func (s *MongoStore) ListByStatus(ctx context.Context, status models.Status) ([]*models.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{"status": string(status)}, opts)
	if err != nil {
		return nil, wrapMongoErr(err, "list applications")
	}
	defer cur.Close(ctx)

	apps := make([]*models.Application, 0)
	for cur.Next(ctx) {
		var doc applicationDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode application: %w", err)
		}
		app, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := cur.Err(); err != nil {
		return nil, wrapMongoErr(err, "list applications")
	}
	return apps, nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*models.Application, error) {
	var doc applicationDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, wrapMongoErr(err, "find application")
	}
	return doc.toModel()
}

func toApplicationDocument(app *models.Application) applicationDocument {
	return applicationDocument{
		ID:                app.ID.String(),
		UserID:            app.UserID.String(),
		Status:            string(app.Status),
		RejectionFeedback: app.RejectionFeedback,
		Version:           app.Version,
		Form:              toFormRecord(app),
		Documents:         toDocumentRecords(app.Documents),
		CreatedAt:         app.CreatedAt,
		UpdatedAt:         app.UpdatedAt,
	}
}

func (d applicationDocument) toModel() (*models.Application, error) {
	appID, err := id.ParseApplicationID(d.ID)
	if err != nil {
		return nil, fmt.Errorf("decode application id: %w", err)
	}
	userID, err := id.ParseUserID(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("decode user id: %w", err)
	}
	app := &models.Application{
		ID:                appID,
		UserID:            userID,
		Status:            models.Status(d.Status),
		RejectionFeedback: d.RejectionFeedback,
		Version:           d.Version,
		Documents:         fromDocumentRecords(d.Documents),
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
	if err := d.Form.applyTo(app); err != nil {
		return nil, fmt.Errorf("decode application form: %w", err)
	}
	return app, nil
}

func wrapMongoErr(err error, op string) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%s: %w: %v", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
