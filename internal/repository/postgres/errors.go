package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// codeInvalidTextRepresentation is raised for a malformed UUID literal.
const codeInvalidTextRepresentation = "22P02"

func isUniqueViolation(err error) bool {
	var perr *pq.Error
	return errors.As(err, &perr) && perr.Code == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var perr *pq.Error
	return errors.As(err, &perr) && perr.Code == codeForeignKeyViolation
}

func isInvalidTextRepresentation(err error) bool {
	var perr *pq.Error
	return errors.As(err, &perr) && perr.Code == codeInvalidTextRepresentation
}
