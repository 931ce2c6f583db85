package mongodb_test

import (
	"context"
	"testing"

	"github.com/architeacher/markets/services/svc-markets/internal/infrastructure/mongodb"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, mongodb.EnsureIndexes(context.Background(), mt.Coll))
	})

	mt.Run("reports conflicting index definitions", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "index registryCode_unique already exists with different options",
		}))

		err := mongodb.EnsureIndexes(context.Background(), mt.Coll)
		require.Error(mt, err)
		require.Contains(mt, err.Error(), "creating markets indexes")
	})
}
