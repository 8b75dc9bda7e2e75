package repository

import (
	"context"
	"testing"
	"time"

	userserrors "slotly/internal/users/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestFindByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "slotly.Users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "email", Value: "h@x.com"},
			{Key: "name", Value: "Hana Host"},
			{Key: "available_slots", Value: bson.A{"09:00", "10:00"}},
		}))

		user, err := NewUserDirectory(mt.Coll, time.Second).FindByEmail(context.Background(), "h@x.com")

		require.NoError(mt, err)
		assert.Equal(mt, "Hana Host", user.Name)
		assert.Equal(mt, []string{"09:00", "10:00"}, user.AvailableSlots)
	})

	mt.Run("unknown email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "slotly.Users", mtest.FirstBatch))

		_, err := NewUserDirectory(mt.Coll, time.Second).FindByEmail(context.Background(), "nobody@x.com")

		assert.ErrorIs(mt, err, userserrors.ErrNotFound)
	})
}
