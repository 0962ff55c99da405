package errhandler

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEmptyContext(t *testing.T) {
	var provider ContextProvider = EmptyContext{}

	assert.Empty(t, provider.User())
	assert.Empty(t, provider.Tags())
	assert.Empty(t, provider.Contexts())
	assert.Empty(t, provider.Extras())
}

func TestStore_SetAndGet(t *testing.T) {
	store := NewStore()
	store.SetUser(map[string]any{"id": 1})
	store.SetTag("region", "eu")
	store.SetContext("request", map[string]any{"path": "/health"})
	store.SetExtra("attempt", 2)

	assert.Equal(t, map[string]any{"id": 1}, store.User())
	assert.Equal(t, map[string]string{"region": "eu"}, store.Tags())
	assert.Equal(t, map[string]map[string]any{"request": {"path": "/health"}}, store.Contexts())
	assert.Equal(t, map[string]any{"attempt": 2}, store.Extras())
}

func TestStore_ReturnsCopies(t *testing.T) {
	store := NewStore()
	store.SetTag("region", "eu")
	store.SetContext("request", map[string]any{"path": "/"})

	store.Tags()["region"] = "us"
	store.Contexts()["request"]["path"] = "/admin"

	assert.Equal(t, "eu", store.Tags()["region"])
	assert.Equal(t, "/", store.Contexts()["request"]["path"])
}

func TestStore_CopiesOnSet(t *testing.T) {
	store := NewStore()
	user := map[string]any{"id": 1}
	store.SetUser(user)

	user["id"] = 2

	assert.Equal(t, 1, store.User()["id"])
}

func TestStore_Reset(t *testing.T) {
	store := NewStore()
	store.SetUser(map[string]any{"id": 1})
	store.SetTag("region", "eu")
	store.SetExtra("attempt", 2)

	store.Reset()

	assert.Empty(t, store.User())
	assert.Empty(t, store.Tags())
	assert.Empty(t, store.Contexts())
	assert.Empty(t, store.Extras())
}

func TestStore_Concurrent(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.SetTag("key", "value")
			store.SetExtra("key", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.Tags()
			_ = store.Extras()
		}()
	}
	wg.Wait()

	assert.Equal(t, "value", store.Tags()["key"])
}

func TestErrorIDContext(t *testing.T) {
	ctx := context.Background()

	_, ok := ErrorIDFromContext(ctx)
	assert.False(t, ok)

	ctx = WithErrorID(ctx, "error1")
	id, ok := ErrorIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "error1", id)

	_, ok = ErrorIDFromContext(WithErrorID(context.Background(), ""))
	assert.False(t, ok)
}

func TestNewErrorID(t *testing.T) {
	a := NewErrorID()
	b := NewErrorID()

	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}
