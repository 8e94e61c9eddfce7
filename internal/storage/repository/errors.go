package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Типизированные ошибки хранилища. Обработчики различают их через errors.Is
// вместо разбора текста ошибки драйвера.
var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists нарушение уникальности (email, username, event id).
	ErrAlreadyExists = errors.New("already exists")
)

// mapError переводит ошибки драйвера в типизированные ошибки хранилища.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrAlreadyExists
		case pgerrcode.ForeignKeyViolation:
			return ErrNotFound
		}
	}
	return err
}
