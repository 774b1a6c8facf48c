package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/repository"
	"github.com/mamadbah2/herdsync/internal/repository/repotest"
)

// The suite needs a replica set because SaveCompletions and Reset use transactions.
const testURIEnv = "HERDSYNC_MONGODB_TEST_URI"

func TestRepositoryContract(t *testing.T) {
	uri := os.Getenv(testURIEnv)
	if uri == "" {
		t.Skipf("%s not set", testURIEnv)
	}

	n := 0
	repotest.Run(t, func(t *testing.T) repository.Repository {
		n++
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		dbName := fmt.Sprintf("herdsync_test_%d_%d", time.Now().UnixNano(), n)
		repo, err := NewMongoDBRepository(ctx, uri, dbName, zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = repo.db.Drop(context.Background())
			_ = repo.Close(context.Background())
		})
		return repo
	})
}
