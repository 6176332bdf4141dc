package mongo

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/snapshot"
)

func TestFilter(t *testing.T) {
	if got := filter("t", ""); len(got) != 1 || got[0].Key != "tree.id" {
		t.Errorf("filter(t) = %v", got)
	}
	if got := filter("t", "p"); len(got) != 2 || got[1].Key != "focal.id" || got[1].Value != "p" {
		t.Errorf("filter(t, p) = %v", got)
	}
}

func TestStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		doc := bson.D{
			{Key: "tree", Value: bson.D{{Key: "id", Value: "t"}}},
			{Key: "focal", Value: bson.D{{Key: "id", Value: "ada"}, {Key: "first_name", Value: "Ada"}}},
			{Key: "partner_ex", Value: true},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "kintree.snapshots", mtest.FirstBatch, doc))

		s, err := New(mt.Coll).Snapshot(context.Background(), "t", "ada")
		if err != nil {
			t.Fatal(err)
		}
		if s.Focal.FirstName != "Ada" || !s.PartnerEx {
			t.Errorf("snapshot = %+v", s)
		}
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "kintree.snapshots", mtest.FirstBatch))

		_, err := New(mt.Coll).Snapshot(context.Background(), "t", "ghost")
		if !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
			t.Errorf("err = %v", err)
		}
	})

	mt.Run("save", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := New(mt.Coll).Save(context.Background(), &snapshot.Snapshot{
			Tree:  snapshot.Tree{ID: "t"},
			Focal: &snapshot.Person{ID: "ada"},
		})
		if err != nil {
			t.Fatal(err)
		}
	})

	mt.Run("save invalid", func(mt *mtest.T) {
		err := New(mt.Coll).Save(context.Background(), &snapshot.Snapshot{})
		if !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
			t.Errorf("err = %v", err)
		}
	})
}
