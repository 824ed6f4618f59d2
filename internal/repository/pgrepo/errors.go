package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/savelyev-an/packmart/internal/domain"
)

const (
	uniqueViolationCode  = "23505"
	serializationCode    = "40001"
	deadlockDetectedCode = "40P01"
	lockNotAvailableCode = "55P03"
)

// convertErr преобразует ошибку хранилища к доменному виду.
// Особенности:
//   - pgx.ErrNoRows -> domain.ErrRecordNotFound;
//   - нарушение уникальности (23505) -> domain.ErrDuplicateKey;
//   - конфликты сериализации/дедлоки/таймауты -> domain.ErrUnavailable,
//     сервисный слой ретраит их с backoff'ом;
//   - все остальное -> domain.ErrUnknown с оригинальным сообщением.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("[repository/%s] %w: %s", msg, domain.ErrUnavailable, err.Error())
	}

	errType := domain.ErrUnknown

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			errType = domain.ErrDuplicateKey
		case serializationCode, deadlockDetectedCode, lockNotAvailableCode:
			errType = domain.ErrUnavailable
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}
