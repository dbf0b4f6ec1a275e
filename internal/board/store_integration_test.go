//go:build integration

package board

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Run against a live instance:
//
//	MONGO_TEST_URI=mongodb://localhost:27017 go test -tags integration ./internal/board/
func testStore(t *testing.T) *MongoStore {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	db := client.Database("kropbot_test")
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return NewMongoStore(db)
}

func TestNextIDMonotonicUnderConcurrency(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.NextID(ctx, PostIDSequence)
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestStoreCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureIndexes(ctx, 30*24*time.Hour))

	id, err := s.NextID(ctx, PostIDSequence)
	require.NoError(t, err)

	l := Listing{
		ID:          id,
		OwnerID:     42,
		Kind:        KindJob,
		Category:    "👷 Jobs / Gigs",
		Description: "need a hand moving boxes",
		Contact:     "@boxmover",
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, s.Insert(ctx, l))
	assert.ErrorIs(t, s.Insert(ctx, l), ErrDuplicateID)

	got, err := s.FindOne(ctx, id, 42)
	require.NoError(t, err)
	assert.Equal(t, l.Description, got.Description)

	_, err = s.FindOne(ctx, id, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := s.UpdateDescription(ctx, id, 42, "need two hands")
	require.NoError(t, err)
	assert.True(t, ok)

	items, total, err := s.FindPage(ctx, Filter{OwnerID: 42}, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "need two hands", items[0].Description)

	ok, err = s.Delete(ctx, id, 42)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, id, 42)
	require.NoError(t, err)
	assert.False(t, ok)
}
