package inmem

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnkNkm/Lipona/server/dao"
)

func Test_ExecutionsRepository_CreateAndGetByID(t *testing.T) {
	repo := NewExecutionsRepository()
	defer repo.Close()

	stored, err := repo.Create(context.Background(), dao.Execution{
		Source: "pana e 1",
		Result: "1",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.False(t, stored.Created.IsZero())

	got, err := repo.GetByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func Test_ExecutionsRepository_GetByIDNotFound(t *testing.T) {
	repo := NewExecutionsRepository()
	defer repo.Close()

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_ExecutionsRepository_CreateAssignsDistinctIDs(t *testing.T) {
	repo := NewExecutionsRepository()
	defer repo.Close()

	a, err := repo.Create(context.Background(), dao.Execution{Source: "a"})
	require.NoError(t, err)
	b, err := repo.Create(context.Background(), dao.Execution{Source: "b"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}
