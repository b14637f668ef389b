package dao

import (
	"errors"

	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return pgError.Code == uniqueViolation
	}
	return false
}

// DBErrorToApi wraps storage errors into a DaoError the http layer can map to a status.
func DBErrorToApi(message string, err error) error {
	if err == nil {
		return nil
	}
	var daoErr *ce.DaoError
	if errors.As(err, &daoErr) {
		return err
	}
	return &ce.DaoError{
		Message:  message,
		Err:      err,
		Conflict: isUniqueViolation(err),
	}
}
