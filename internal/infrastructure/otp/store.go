package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"talenthub/internal/config"

	"github.com/redis/go-redis/v9"
)

var (
	ErrExpired         = errors.New("otp expired or not found")
	ErrMismatch        = errors.New("otp mismatch")
	ErrTooManyAttempts = errors.New("otp attempts exceeded")
	ErrUnavailable     = errors.New("otp store unavailable")
)

const (
	fieldHash     = "hash"
	fieldAttempts = "attempts"
)

// countAttempt bumps the attempt counter only while the code still exists, so
// a code that expires mid-verify is not recreated without a TTL.
var countAttempt = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
`)

// RedisStore keeps one hashed code per email in a redis hash along with the
// number of failed attempts, plus a cooldown key that throttles resends.
type RedisStore struct {
	client      *redis.Client
	length      int
	ttl         time.Duration
	cooldown    time.Duration
	maxAttempts int
}

func NewRedisStore(client *redis.Client, cfg config.OTPConfig) *RedisStore {
	return &RedisStore{
		client:      client,
		length:      cfg.Length,
		ttl:         cfg.TTL,
		cooldown:    cfg.ResendCooldown,
		maxAttempts: cfg.MaxAttempts,
	}
}

func codeKey(email string) string     { return "otp:code:" + normalize(email) }
func cooldownKey(email string) string { return "otp:cooldown:" + normalize(email) }

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(code)))
	return hex.EncodeToString(sum[:])
}

// Generate returns a random numeric code of n digits.
func Generate(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("invalid otp length %d", n)
	}
	var b strings.Builder
	b.Grow(n)
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

// Cooldown returns how long the caller must wait before another code may be
// issued for email. Zero means a code may be sent now.
func (s *RedisStore) Cooldown(ctx context.Context, email string) (time.Duration, error) {
	if s == nil || s.client == nil {
		return 0, ErrUnavailable
	}
	ttl, err := s.client.PTTL(ctx, cooldownKey(email)).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Issue generates a fresh code for email, replacing any previous one and
// resetting the attempt counter, and starts the resend cooldown.
func (s *RedisStore) Issue(ctx context.Context, email string) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrUnavailable
	}
	code, err := Generate(s.length)
	if err != nil {
		return "", err
	}

	key := codeKey(email)
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, fieldHash, hashCode(code), fieldAttempts, 0)
		p.Expire(ctx, key, s.ttl)
		if s.cooldown > 0 {
			p.Set(ctx, cooldownKey(email), "1", s.cooldown)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks code against the stored one. A match consumes the code. A
// mismatch counts as an attempt and the code is burned once the limit is hit.
func (s *RedisStore) Verify(ctx context.Context, email, code string) error {
	if s == nil || s.client == nil {
		return ErrUnavailable
	}
	key := codeKey(email)
	vals, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return err
	}
	stored, ok := vals[fieldHash]
	if !ok || stored == "" {
		return ErrExpired
	}
	attempts, _ := strconv.Atoi(vals[fieldAttempts])
	if s.maxAttempts > 0 && attempts >= s.maxAttempts {
		_ = s.client.Del(ctx, key).Err()
		return ErrTooManyAttempts
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashCode(code))) == 1 {
		return s.client.Del(ctx, key).Err()
	}

	n, err := countAttempt.Run(ctx, s.client, []string{key}, fieldAttempts).Int64()
	if err != nil {
		return err
	}
	if n < 0 {
		return ErrExpired
	}
	if s.maxAttempts > 0 && int(n) >= s.maxAttempts {
		_ = s.client.Del(ctx, key).Err()
		return ErrTooManyAttempts
	}
	return ErrMismatch
}

// Discard removes any pending code for email.
func (s *RedisStore) Discard(ctx context.Context, email string) error {
	if s == nil || s.client == nil {
		return ErrUnavailable
	}
	return s.client.Del(ctx, codeKey(email)).Err()
}
