package source

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/snapshot"
)

// File reads snapshots stored as JSON files under Dir.
//
// The snapshot of tree t centered on person p is read from Dir/t/p.json,
// falling back to Dir/t.json when p is empty or has no file of its own.
// Tree identifiers may name subdirectories ("families/smith") but never leave
// Dir. With an empty Dir, the tree identifier is itself the path of a snapshot
// file.
type File struct {
	Dir string
}

// NewFile returns a file source rooted at dir.
func NewFile(dir string) *File { return &File{Dir: dir} }

// Snapshot reads the snapshot of treeID, preferring a per-person file
// when focalID is set.
func (f *File) Snapshot(ctx context.Context, treeID, focalID string) (*snapshot.Snapshot, error) {
	if treeID == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree id is required")
	}
	if f.Dir == "" {
		return f.read(treeID, focalID)
	}
	if err := errors.ValidatePath(treeID); err != nil {
		return nil, err
	}
	if focalID != "" {
		if err := errors.ValidateIdentifier("person", focalID); err != nil {
			return nil, err
		}
	}
	if focalID != "" {
		s, err := f.read(filepath.Join(f.Dir, treeID, focalID+".json"), focalID)
		if err == nil || !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
			return s, err
		}
	}
	return f.read(filepath.Join(f.Dir, treeID+".json"), focalID)
}

func (f *File) read(path, focalID string) (*snapshot.Snapshot, error) {
	s, err := snapshot.ImportJSON(path)
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return nil, errors.Wrap(errors.ErrCodeSnapshotNotFound, err, "no snapshot at %s", path)
	}
	if err != nil {
		return nil, err
	}
	if focalID != "" && s.Focal.ID != focalID {
		return nil, errors.New(errors.ErrCodeSnapshotNotFound, "%s is centered on %s, not %s", path, s.Focal.ID, focalID)
	}
	return s, nil
}

// Memory serves snapshots held in memory, keyed by tree identifier. Every
// snapshot of a tree is a candidate; the first one centered on the requested
// person wins, and an empty person selects the first snapshot.
type Memory struct {
	Trees map[string][]*snapshot.Snapshot
}

// NewMemory returns an empty in-memory source.
func NewMemory() *Memory { return &Memory{Trees: make(map[string][]*snapshot.Snapshot)} }

// Add stores s under its tree identifier.
func (m *Memory) Add(s *snapshot.Snapshot) {
	m.Trees[s.Tree.ID] = append(m.Trees[s.Tree.ID], s)
}

// Snapshot returns the first stored snapshot of treeID centered on focalID.
func (m *Memory) Snapshot(ctx context.Context, treeID, focalID string) (*snapshot.Snapshot, error) {
	for _, s := range m.Trees[treeID] {
		if focalID == "" || (s.Focal != nil && s.Focal.ID == focalID) {
			return s, nil
		}
	}
	return nil, errors.New(errors.ErrCodeSnapshotNotFound, "no snapshot of %s centered on %q", treeID, focalID)
}

var (
	_ Source = (*File)(nil)
	_ Source = (*Memory)(nil)
)
