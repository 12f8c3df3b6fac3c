package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	redisStore "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/core/ports/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupIdempotencyRouter(t *testing.T, status int) (*gin.Engine, *int32) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := redisStore.NewIdempotencyCache(client)

	var calls int32
	router := gin.New()
	router.POST("/api/wallets/add-money", Idempotency(cache, time.Hour, zerolog.Nop()), func(c *gin.Context) {
		n := atomic.AddInt32(&calls, 1)
		c.JSON(status, gin.H{"call": n})
	})
	return router, &calls
}

func postWithKey(router *gin.Engine, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/wallets/add-money", bytes.NewBufferString(`{}`))
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysCompletedRequest(t *testing.T) {
	router, calls := setupIdempotencyRouter(t, http.StatusCreated)

	first := postWithKey(router, "key-1")
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.JSONEq(t, `{"call":1}`, first.Body.String())

	second := postWithKey(router, "key-1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, `{"call":1}`, second.Body.String())
	assert.Equal(t, "true", second.Header().Get(HeaderIdempotentReplay))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	third := postWithKey(router, "key-2")
	assert.JSONEq(t, `{"call":2}`, third.Body.String())
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	router, calls := setupIdempotencyRouter(t, http.StatusCreated)

	postWithKey(router, "")
	postWithKey(router, "")
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_ErrorsAreNotStored(t *testing.T) {
	router, calls := setupIdempotencyRouter(t, http.StatusBadRequest)

	postWithKey(router, "key-1")
	w := postWithKey(router, "key-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Header().Get(HeaderIdempotentReplay))
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_InFlightConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockIdempotencyCache(ctrl)

	cache.EXPECT().Get(gomock.Any(), "/pay:key-1").Return(nil, nil)
	cache.EXPECT().Lock(gomock.Any(), "/pay:key-1", idempotencyLockTTL).Return(false, nil)

	router := gin.New()
	router.POST("/pay", Idempotency(cache, time.Hour, zerolog.Nop()), func(c *gin.Context) {
		t.Fatal("handler must not run")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pay", nil)
	req.Header.Set(HeaderIdempotencyKey, "key-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "IDEMPOTENCY_CONFLICT")
}

func TestIdempotency_CacheDownDegrades(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockIdempotencyCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))

	var ran bool
	router := gin.New()
	router.POST("/pay", Idempotency(cache, time.Hour, zerolog.Nop()), func(c *gin.Context) {
		ran = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequestWithContext(context.Background(), http.MethodPost, "/pay", nil)
	req.Header.Set(HeaderIdempotencyKey, "key-1")
	router.ServeHTTP(w, req)

	assert.True(t, ran)
	assert.Equal(t, http.StatusOK, w.Code)
}

// finishingFirstCache completes a concurrent request holding the same key
// just before the lock is taken: its response is stored and its lock released.
type finishingFirstCache struct {
	ports.IdempotencyCache
	stored []byte
}

func (c *finishingFirstCache) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if c.stored != nil {
		if err := c.IdempotencyCache.Set(ctx, key, c.stored, time.Hour); err != nil {
			return false, err
		}
		c.stored = nil
	}
	return c.IdempotencyCache.Lock(ctx, key, ttl)
}

func TestIdempotency_ReplaysResultStoredBeforeLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cache := &finishingFirstCache{
		IdempotencyCache: redisStore.NewIdempotencyCache(client),
		stored:           []byte(`{"status":201,"body":{"call":1}}`),
	}

	var calls int32
	router := gin.New()
	router.POST("/api/wallets/add-money", Idempotency(cache, time.Hour, zerolog.Nop()), func(c *gin.Context) {
		n := atomic.AddInt32(&calls, 1)
		c.JSON(http.StatusCreated, gin.H{"call": n + 1})
	})

	w := postWithKey(router, "key-1")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"call":1}`, w.Body.String())
	assert.Equal(t, "true", w.Header().Get(HeaderIdempotentReplay))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	// The lock was released after replaying.
	locked, err := cache.Lock(context.Background(), "/api/wallets/add-money:key-1", time.Second)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestIdempotency_RecheckAfterLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockIdempotencyCache(ctrl)

	gomock.InOrder(
		cache.EXPECT().Get(gomock.Any(), "/pay:key-1").Return(nil, nil),
		cache.EXPECT().Lock(gomock.Any(), "/pay:key-1", idempotencyLockTTL).Return(true, nil),
		cache.EXPECT().Get(gomock.Any(), "/pay:key-1").Return([]byte(`{"status":200,"body":{"ok":true}}`), nil),
		cache.EXPECT().Unlock(gomock.Any(), "/pay:key-1").Return(nil),
	)

	router := gin.New()
	router.POST("/pay", Idempotency(cache, time.Hour, zerolog.Nop()), func(c *gin.Context) {
		t.Fatal("handler must not run")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pay", nil)
	req.Header.Set(HeaderIdempotencyKey, "key-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	assert.Equal(t, "true", w.Header().Get(HeaderIdempotentReplay))
}
