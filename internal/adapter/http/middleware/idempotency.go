package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	HeaderIdempotentReplay = "Idempotent-Replay"

	// in-flight claims expire on their own if the process dies mid-request
	idempotencyLockTTL = 30 * time.Second
	maxIdempotencyKey  = 255
)

// cachedResponse is what gets stored for a completed request.
type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// bodyRecorder tees the response body so it can be cached.
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a completed POST that carried
// the same Idempotency-Key. A second request arriving while the first is
// still running gets 409. Only 2xx responses are stored, so a rejected
// request can be retried with the same key. Cache failures degrade to
// normal processing.
func Idempotency(cache ports.IdempotencyCache, ttl time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKey {
			response.Abort(c, apperror.Validation(apperror.CodeInvalidRequest, "Idempotency-Key is too long"))
			return
		}

		ctx := c.Request.Context()
		scoped := c.FullPath() + ":" + key

		cached, err := cache.Get(ctx, scoped)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotency lookup failed, processing request")
			c.Next()
			return
		}
		if replay(c, cached, key, log) {
			return
		}

		locked, err := cache.Lock(ctx, scoped, idempotencyLockTTL)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotency lock failed, processing request")
			c.Next()
			return
		}
		if !locked {
			response.Abort(c, apperror.ErrIdempotencyConflict())
			return
		}

		// A request holding the same key may have stored its result and
		// released the lock between the lookup above and Lock.
		cached, err = cache.Get(ctx, scoped)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotency lookup failed, processing request")
		}
		if replay(c, cached, key, log) {
			if err := cache.Unlock(ctx, scoped); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to release idempotency lock")
			}
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status >= 200 && status < 300 {
			payload, err := json.Marshal(cachedResponse{Status: status, Body: rec.buf.Bytes()})
			if err == nil {
				err = cache.Set(ctx, scoped, payload, ttl)
			}
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to store idempotent response")
			}
		}
		if err := cache.Unlock(ctx, scoped); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to release idempotency lock")
		}
	}
}

// replay writes a stored response and aborts the chain. It reports false
// when there is nothing usable to replay.
func replay(c *gin.Context, cached []byte, key string, log zerolog.Logger) bool {
	if cached == nil {
		return false
	}
	var resp cachedResponse
	if err := json.Unmarshal(cached, &resp); err != nil {
		log.Warn().Str("key", key).Msg("discarding unreadable idempotency entry")
		return false
	}
	c.Header(HeaderIdempotentReplay, "true")
	c.Data(resp.Status, "application/json; charset=utf-8", resp.Body)
	c.Abort()
	return true
}
