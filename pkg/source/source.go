// Package source fetches tree snapshots from where families are stored.
//
// A [Source] answers one question: what does the tree look like around a
// given person? Implementations live in subpackages for remote backends
// ([httpapi], [neo4j], [mongo]) and here for local data ([File], [Memory]).
//
// [httpapi]: github.com/matzehuels/kintree/pkg/source/httpapi
// [neo4j]: github.com/matzehuels/kintree/pkg/source/neo4j
// [mongo]: github.com/matzehuels/kintree/pkg/source/mongo
package source

import (
	"context"

	"github.com/matzehuels/kintree/pkg/snapshot"
)

// Source fetches the snapshot of tree treeID centered on focalID. An empty
// focalID selects the tree's default person where the backend has one.
//
// Implementations return a SNAPSHOT_NOT_FOUND error when the tree or person
// does not exist.
type Source interface {
	Snapshot(ctx context.Context, treeID, focalID string) (*snapshot.Snapshot, error)
}

// Closer is implemented by sources that hold connections.
type Closer interface {
	Close(ctx context.Context) error
}

// Close releases s if it holds resources.
func Close(ctx context.Context, s Source) error {
	if c, ok := s.(Closer); ok {
		return c.Close(ctx)
	}
	return nil
}

// Kinds of sources accepted by configuration.
const (
	KindFile  = "file"
	KindHTTP  = "http"
	KindNeo4j = "neo4j"
	KindMongo = "mongo"
)
