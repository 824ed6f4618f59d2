package service

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/savelyev-an/packmart/internal/domain"
)

const (
	maxRetryAttempts = 3
	baseRetryDelay   = 50 * time.Millisecond
)

// withRetry повторяет fn при транзиентных ошибках хранилища
// (domain.ErrUnavailable) с экспоненциальной джиттер-паузой. Бизнес-ошибки
// не ретраятся. После исчерпания попыток наружу уходит последняя ошибка.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxRetryAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrUnavailable) {
			return err
		}
		delay := time.Duration(jitter(
			float64(baseRetryDelay)*math.Pow(2, float64(attempt)), 0.15, 0.15,
		))
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck
		case <-time.After(delay):
		}
	}
	return err
}

// jitter возвращает число, рассыпавшееся относительно value на случайный процент
// в пределах [1-minPercent, 1+maxPercent].
//
// minPercent и maxPercent должны быть >= 0 (0.1 = 10%). Если указано иное,
// значение выставится в 0.15.
func jitter(value, minPercent, maxPercent float64) float64 {
	if minPercent < 0 || maxPercent < 0 {
		minPercent = 0.15
		maxPercent = 0.15
	}
	factor := 1 - minPercent + rand.Float64()*(minPercent+maxPercent) // nolint:gosec
	return value * factor
}
