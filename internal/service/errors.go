package service

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Domain errors the transport layer translates into status codes. The signin
// message is deliberately the same for an unknown email and a wrong password.
var (
	ErrCredentialsIncorrect = errors.New("Credentials incorrect")
	ErrCredentialsTaken     = errors.New("Credentials Taken")
	ErrAccessDenied         = errors.New("Access to resource denied")
	ErrNotFound             = errors.New("resource not found")
)

const pgUniqueViolationCode = "23505"

// isDuplicateKey recognizes unique constraint violations both through gorm's
// error translation and through the raw pgx error, so it works with the
// sqlite driver used in tests as well as with postgres.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode
}
