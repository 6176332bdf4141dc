// Package mongo stores and serves snapshots in a MongoDB collection.
//
// Each document is one snapshot encoded with its bson tags, so a snapshot
// is found by "tree.id" and "focal.id".
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/snapshot"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "snapshots"

const connectTimeout = 5 * time.Second

// Store is a snapshot source backed by a collection.
type Store struct {
	coll   *mongo.Collection
	client *mongo.Client
}

// Connect opens a client for uri and returns a store over database.collection.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "mongo client for %s", uri)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to %s", uri)
	}
	s := New(client.Database(database).Collection(collection))
	s.client = client
	return s, nil
}

// New returns a store over an existing collection. Closing it leaves the
// collection's client connected.
func New(coll *mongo.Collection) *Store { return &Store{coll: coll} }

// Close disconnects the client opened by [Connect].
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func filter(treeID, focalID string) bson.D {
	f := bson.D{{Key: "tree.id", Value: treeID}}
	if focalID != "" {
		f = append(f, bson.E{Key: "focal.id", Value: focalID})
	}
	return f
}

// Snapshot finds the stored snapshot of treeID centered on focalID.
func (s *Store) Snapshot(ctx context.Context, treeID, focalID string) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	err := s.coll.FindOne(ctx, filter(treeID, focalID)).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeSnapshotNotFound, "no snapshot of %s centered on %q", treeID, focalID)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "find snapshot of %s", treeID)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save inserts s, replacing any snapshot of the same tree and focal person.
func (s *Store) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, filter(snap.Tree.ID, snap.Focal.ID), snap,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "save snapshot of %s", snap.Tree.ID)
	}
	return nil
}
