package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dom/videotube-backend/internal/repository/mongodb"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	tcMongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TestMongo manages a testcontainers MongoDB instance
type TestMongo struct {
	Container testcontainers.Container
	Client    *mongo.Client
	DB        *mongo.Database
}

// NewTestMongo starts a MongoDB container and returns a database with indexes in place
func NewTestMongo(t *testing.T) *TestMongo {
	t.Helper()

	ctx := context.Background()

	container, err := tcMongo.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start mongo container: %v", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	client, err := mongodb.Connect(ctx, uri)
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	db := client.Database("test_videotube")
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("failed to create indexes: %v", err)
	}

	tm := &TestMongo{Container: container, Client: client, DB: db}
	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
		_ = container.Terminate(context.Background())
	})

	return tm
}

// Truncate removes every document from the collections used by the store
func (tm *TestMongo) Truncate(t *testing.T) {
	t.Helper()

	for _, name := range []string{"users", "videos", "subscriptions"} {
		if _, err := tm.DB.Collection(name).DeleteMany(context.Background(), bson.M{}); err != nil {
			t.Logf("warning: failed to truncate %s: %v", name, err)
		}
	}
}

// InsertVideo stores a published video owned by ownerID and returns its id
func (tm *TestMongo) InsertVideo(t *testing.T, ownerID uuid.UUID, title string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	now := time.Now()
	_, err := tm.DB.Collection("videos").InsertOne(context.Background(), bson.M{
		"_id":         id.String(),
		"videoFile":   "https://cdn.test/" + id.String() + ".mp4",
		"thumbnail":   "https://cdn.test/" + id.String() + ".png",
		"title":       title,
		"description": title + " description",
		"duration":    42.5,
		"views":       int64(0),
		"isPublished": true,
		"owner":       ownerID.String(),
		"createdAt":   now,
		"updatedAt":   now,
	})
	if err != nil {
		t.Fatalf("failed to insert video: %v", err)
	}
	return id
}

// Subscribe records subscriber following channel
func (tm *TestMongo) Subscribe(t *testing.T, subscriber, channel uuid.UUID) {
	t.Helper()

	_, err := tm.DB.Collection("subscriptions").InsertOne(context.Background(), bson.M{
		"_id":        uuid.NewString(),
		"subscriber": subscriber.String(),
		"channel":    channel.String(),
		"createdAt":  time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to insert subscription: %v", err)
	}
}

// SetWatchHistory overwrites the user's watch history
func (tm *TestMongo) SetWatchHistory(t *testing.T, userID uuid.UUID, videoIDs ...uuid.UUID) {
	t.Helper()

	ids := make([]string, 0, len(videoIDs))
	for _, id := range videoIDs {
		ids = append(ids, id.String())
	}
	_, err := tm.DB.Collection("users").UpdateByID(context.Background(), userID.String(),
		bson.M{"$set": bson.M{"watchHistory": ids}})
	if err != nil {
		t.Fatalf("failed to set watch history: %v", err)
	}
}
