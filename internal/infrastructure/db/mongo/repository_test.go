package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

// The repositories below run against the driver's mock deployment, which
// answers each command with the next scripted reply.

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestUserRepository_CreateDuplicateIsConflict(t *testing.T) {
	mt := newMockT(t)

	mt.Run("duplicate key", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: cats.users index: email_1",
		}))

		_, err := repo.Create(context.Background(), &domain.User{Name: "alice", Email: "alice@example.com", Role: domain.RoleUser})
		assert.True(mt, errors.Is(err, domain.ErrConflict), "got %v", err)
	})

	mt.Run("inserted", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user, err := repo.Create(context.Background(), &domain.User{Name: "alice", Email: "alice@example.com", Role: domain.RoleUser})
		require.NoError(mt, err)
		_, err = primitive.ObjectIDFromHex(user.ID)
		assert.NoError(mt, err, "id %q is not an ObjectID", user.ID)
	})
}

func TestCatRepository_MergeUpdate(t *testing.T) {
	mt := newMockT(t)
	catID := primitive.NewObjectID()
	owner := primitive.NewObjectID()

	mt.Run("owner scoped", func(mt *mtest.T) {
		repo := NewCatRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: catID},
			{Key: "cat_name", Value: "Misu"},
			{Key: "weight", Value: 5.5},
			{Key: "birthdate", Value: time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)},
			{Key: "coordinates", Value: bson.D{{Key: "lat", Value: 60.2}, {Key: "lng", Value: 24.9}}},
			{Key: "owner", Value: owner},
		}}))

		weight := 5.5
		cat, err := repo.MergeUpdate(context.Background(), catID.Hex(), owner.Hex(), domain.CatPatch{Weight: &weight})
		require.NoError(mt, err)
		assert.Equal(mt, catID.Hex(), cat.ID)
		assert.Equal(mt, owner.Hex(), cat.OwnerID)
		assert.Equal(mt, 5.5, cat.Weight)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "findAndModify", started.CommandName)
		assert.Equal(mt, owner, started.Command.Lookup("query", "owner").ObjectID(), "write not conditional on the owner")
		assert.Equal(mt, 5.5, started.Command.Lookup("update", "$set", "weight").Double())
		_, err = started.Command.Lookup("update", "$set").Document().LookupErr("cat_name")
		assert.Error(mt, err, "field absent from the patch was written")
	})

	mt.Run("no match is not found", func(mt *mtest.T) {
		repo := NewCatRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		name := "Tofu"
		_, err := repo.MergeUpdate(context.Background(), catID.Hex(), owner.Hex(), domain.CatPatch{Name: &name})
		assert.True(mt, errors.Is(err, domain.ErrNotFound), "got %v", err)
	})

	mt.Run("store failure", func(mt *mtest.T) {
		repo := NewCatRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		name := "Tofu"
		_, err := repo.MergeUpdate(context.Background(), catID.Hex(), "", domain.CatPatch{Name: &name})
		assert.True(mt, errors.Is(err, domain.ErrStoreUnavailable), "got %v", err)
	})
}

func TestCatRepository_IsCatOwnedBy(t *testing.T) {
	mt := newMockT(t)
	catID := primitive.NewObjectID()
	owner := primitive.NewObjectID()

	mt.Run("owned", func(mt *mtest.T) {
		repo := NewCatRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.cats", mtest.FirstBatch, bson.D{{Key: "n", Value: int64(1)}}))

		owned, err := repo.IsCatOwnedBy(context.Background(), catID.Hex(), owner.Hex())
		require.NoError(mt, err)
		assert.True(mt, owned)
	})

	mt.Run("not owned", func(mt *mtest.T) {
		repo := NewCatRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.cats", mtest.FirstBatch))

		owned, err := repo.IsCatOwnedBy(context.Background(), catID.Hex(), owner.Hex())
		require.NoError(mt, err)
		assert.False(mt, owned)
	})

	mt.Run("malformed ids never reach the store", func(mt *mtest.T) {
		repo := NewCatRepository(mt.DB)

		owned, err := repo.IsCatOwnedBy(context.Background(), "nope", owner.Hex())
		require.NoError(mt, err)
		assert.False(mt, owned)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}
