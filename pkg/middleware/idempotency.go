package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/prohmpiriya/residence-gate/pkg/response"
)

const (
	// IdempotencyKeyHeader carries the client's replay key
	IdempotencyKeyHeader = "X-Idempotency-Key"
	// IdempotencyKeyPrefix namespaces records in Redis
	IdempotencyKeyPrefix = "idempotency:"

	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultProcessingTTL  = 60 * time.Second
)

// ErrRecordNotFound is returned by an IdempotencyStore with no record for the key
var ErrRecordNotFound = errors.New("idempotency record not found")

// IdempotencyStatus represents the status of an idempotency record
type IdempotencyStatus string

const (
	StatusProcessing IdempotencyStatus = "processing"
	StatusCompleted  IdempotencyStatus = "completed"
)

// IdempotencyRecord stores the state of an idempotent request
type IdempotencyRecord struct {
	Status       IdempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code"`
	ResponseBody string            `json:"response_body"`
	CreatedAt    time.Time         `json:"created_at"`
}

// IdempotencyStore persists records keyed by the client's idempotency key
type IdempotencyStore interface {
	// Reserve stores rec only if no record exists and reports whether it did
	Reserve(ctx context.Context, key string, rec *IdempotencyRecord, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	Save(ctx context.Context, key string, rec *IdempotencyRecord, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// RedisClient is the subset of go-redis used by RedisIdempotencyStore
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisIdempotencyStore keeps records as JSON strings with a TTL
type RedisIdempotencyStore struct {
	client RedisClient
}

// NewRedisIdempotencyStore creates a Redis-backed store
func NewRedisIdempotencyStore(client RedisClient) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, rec *IdempotencyRecord, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return false, err
	}
	return s.client.SetNX(ctx, IdempotencyKeyPrefix+key, data, ttl).Result()
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*IdempotencyRecord, error) {
	raw, err := s.client.Get(ctx, IdempotencyKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec IdempotencyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisIdempotencyStore) Save(ctx context.Context, key string, rec *IdempotencyRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, IdempotencyKeyPrefix+key, data, ttl).Err()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, IdempotencyKeyPrefix+key).Err()
}

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Store         IdempotencyStore
	TTL           time.Duration
	ProcessingTTL time.Duration
}

// Idempotency replays the stored response for a repeated X-Idempotency-Key.
// Requests without the header pass through; store failures fail open.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	if config.TTL <= 0 {
		config.TTL = DefaultIdempotencyTTL
	}
	if config.ProcessingTTL <= 0 {
		config.ProcessingTTL = DefaultProcessingTTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		hash := requestHash(c, body)
		ctx := c.Request.Context()

		rec := &IdempotencyRecord{Status: StatusProcessing, RequestHash: hash, CreatedAt: time.Now()}
		reserved, err := config.Store.Reserve(ctx, key, rec, config.ProcessingTTL)
		if err != nil {
			c.Next()
			return
		}
		if !reserved {
			existing, err := config.Store.Get(ctx, key)
			if err != nil {
				c.Next()
				return
			}
			replay(c, existing, hash)
			return
		}

		rw := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rw

		c.Next()

		status := rw.Status()
		if status >= http.StatusInternalServerError {
			// let the client retry a server failure with the same key
			_ = config.Store.Release(ctx, key)
			return
		}
		rec.Status = StatusCompleted
		rec.ResponseCode = status
		rec.ResponseBody = rw.body.String()
		_ = config.Store.Save(ctx, key, rec, config.TTL)
	}
}

func replay(c *gin.Context, existing *IdempotencyRecord, hash string) {
	switch {
	case existing.RequestHash != hash:
		response.Abort(c, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED", "Idempotency key already used with a different request")
	case existing.Status == StatusProcessing:
		response.Abort(c, http.StatusConflict, "REQUEST_IN_PROGRESS", "A request with this idempotency key is already being processed")
	default:
		c.Header("X-Idempotent-Replay", "true")
		c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
		c.Abort()
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func requestHash(c *gin.Context, body []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	if userID, ok := GetUserID(c); ok {
		h.Write([]byte(userID))
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// capturingWriter tees the response body for caching
type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
