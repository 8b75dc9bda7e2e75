package mongo

import (
	"context"
	"testing"

	"slotly/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestBookingsIndexes(t *testing.T) {
	slot := BookingsIndexes(false)[0]
	assert.Nil(t, slot.Options.Unique)
	assert.Equal(t, bson.D{{Key: "host_email", Value: 1}, {Key: "date", Value: 1}, {Key: "slot", Value: 1}}, slot.Keys)

	unique := BookingsIndexes(true)[0]
	require.NotNil(t, unique.Options.Unique)
	assert.True(t, *unique.Options.Unique)
	assert.Len(t, BookingsIndexes(true), 3)
}

func TestUsersIndexes(t *testing.T) {
	idx := UsersIndexes()
	require.Len(t, idx, 1)
	assert.True(t, *idx[0].Options.Unique)
}

func TestMigrate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("fresh database", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".$cmd.listCollections"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		err := Migrate(context.Background(), mt.DB, Options{EnforceUniqueSlot: true}, logger.Discard())

		assert.NoError(mt, err)
	})

	mt.Run("existing collections", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".$cmd.listCollections"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "name", Value: BookingsCollection}, {Key: "type", Value: "collection"}}),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "name", Value: UsersCollection}, {Key: "type", Value: "collection"}}),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		err := Migrate(context.Background(), mt.DB, Options{}, logger.Discard())

		assert.NoError(mt, err)
	})

	mt.Run("index build fails", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".$cmd.listCollections"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    11000,
				Message: "E11000 duplicate key error collection: Bookings index: host_date_slot",
			}),
		)

		err := Migrate(context.Background(), mt.DB, Options{EnforceUniqueSlot: true}, logger.Discard())

		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to ensure indexes for Bookings")
	})
}
