package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlStateExclusionViolation = "23P01"
	sqlStateSerialization      = "40001"
	sqlStateDeadlock           = "40P01"
)

// IsExclusionConflict reconhece a violação da exclusion constraint de
// agendamentos sobrepostos.
func IsExclusionConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateExclusionViolation
	}
	return false
}

// IsSerializationFailure reconhece a falha de serialização do PostgreSQL.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateSerialization
	}
	return false
}

// IsDeadlock reconhece a transação escolhida como vítima de deadlock.
func IsDeadlock(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateDeadlock
	}
	return false
}

// IsRetryable diz se a transação falhou só por concorrência e pode ser
// repetida inteira pelo cliente.
func IsRetryable(err error) bool {
	return IsDeadlock(err) || IsSerializationFailure(err)
}
