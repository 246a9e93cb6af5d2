package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
)

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

// safely dereference pointer of type T, nil pointer return zero value or optional default
func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

func NilIfEmpty[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func UniqueSlice[T comparable](slice []T) []T {
	seen := make(map[T]struct{}, len(slice))
	result := make([]T, 0, len(slice))
	for _, v := range slice {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// ProcessValidationErrors flattens validator/v10 field errors into a
// field => failed-tag map for API responses.
func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorResponse["error"] = err.Error()
		return errorResponse
	}
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}
	return errorResponse
}

// ObtainLock takes a best-effort distributed lock. The returned release func
// is never nil. Correctness must not depend on this lock; the per-roll
// version CAS is the real guard. Returns held=false when Redis is not
// connected or the lock is already taken.
func ObtainLock(ctx context.Context, lockType string, key string, ttl time.Duration) (release func(), held bool, err error) {
	release = func() {}
	locker := config.GetRedisLock()
	if locker == nil {
		return release, false, nil
	}
	lockKey := fmt.Sprintf("%s:%s", lockType, key)
	lock, err := locker.Obtain(ctx, lockKey, ttl, nil)
	if err == redislock.ErrNotObtained {
		return release, false, nil
	} else if err != nil {
		return release, false, err
	}
	release = func() {
		_ = lock.Release(ctx)
	}
	return release, true, nil
}
