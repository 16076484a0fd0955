package helpers

import (
	"context"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MinPasswordCost is the lowest bcrypt work factor accepted in production config.
const MinPasswordCost = 12

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), MinPasswordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// PasswordHasher runs bcrypt off the request goroutine with bounded parallelism.
type PasswordHasher struct {
	cost int
	sem  *semaphore.Weighted
}

func NewPasswordHasher(cost, concurrency int) *PasswordHasher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &PasswordHasher{cost: cost, sem: semaphore.NewWeighted(int64(concurrency))}
}

type hashResult struct {
	hash string
	ok   bool
	err  error
}

func (h *PasswordHasher) run(ctx context.Context, fn func() hashResult) (hashResult, error) {
	if err := ctx.Err(); err != nil {
		return hashResult{}, err
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return hashResult{}, err
	}
	done := make(chan hashResult, 1)
	go func() {
		defer h.sem.Release(1)
		done <- fn()
	}()
	select {
	case res := <-done:
		return res, res.err
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	}
}

// Hash returns the bcrypt hash of plain.
func (h *PasswordHasher) Hash(ctx context.Context, plain string) (string, error) {
	res, err := h.run(ctx, func() hashResult {
		b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
		return hashResult{hash: string(b), err: err}
	})
	return res.hash, err
}

// Compare reports whether plain matches hash. A mismatch is not an error.
func (h *PasswordHasher) Compare(ctx context.Context, hash, plain string) (bool, error) {
	res, err := h.run(ctx, func() hashResult {
		return hashResult{ok: CompareHashAndPassword(hash, plain)}
	})
	return res.ok, err
}
