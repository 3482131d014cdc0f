package repos

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const MaxOTPAttempts = 5

var (
	ErrOTPMissing  = errors.New("otp expired or never requested")
	ErrOTPAttempts = errors.New("otp attempts exhausted")
)

// OTPStore keeps one-time login codes in Redis with a TTL.
type OTPStore struct {
	rdb *redis.Client
}

func NewOTPStore(rdb *redis.Client) *OTPStore {
	return &OTPStore{rdb: rdb}
}

func otpKey(phone string) string      { return fmt.Sprintf("otp:%s", phone) }
func attemptsKey(phone string) string { return fmt.Sprintf("otp:%s:attempts", phone) }

// Save stores code for phone and resets the attempt counter.
func (s *OTPStore) Save(ctx context.Context, phone, code string, ttl time.Duration) error {
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, otpKey(phone), code, ttl)
		p.Del(ctx, attemptsKey(phone))
		return nil
	})
	return err
}

// Verify checks code and consumes it on success. Every call counts as an attempt;
// after MaxOTPAttempts the code is discarded.
func (s *OTPStore) Verify(ctx context.Context, phone, code string) (bool, error) {
	stored, err := s.rdb.Get(ctx, otpKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return false, ErrOTPMissing
	}
	if err != nil {
		return false, err
	}

	n, err := s.rdb.Incr(ctx, attemptsKey(phone)).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		ttl, err := s.rdb.TTL(ctx, otpKey(phone)).Result()
		if err == nil && ttl > 0 {
			s.rdb.Expire(ctx, attemptsKey(phone), ttl)
		}
	}
	if n > MaxOTPAttempts {
		s.rdb.Del(ctx, otpKey(phone), attemptsKey(phone))
		return false, ErrOTPAttempts
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return false, nil
	}
	if err := s.rdb.Del(ctx, otpKey(phone), attemptsKey(phone)).Err(); err != nil {
		return false, err
	}
	return true, nil
}
