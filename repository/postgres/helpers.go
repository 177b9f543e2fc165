package postgres

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/tasktracker/domain"
)

func marshalMap(data map[string]string) []byte {
	if len(data) == 0 {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	return b
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// translateError maps driver errors onto domain errors. Constraint and
// schema violations become validation errors.
func translateError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return domain.ErrUnknownUserRef
		case "23505":
			return domain.WrapError(domain.ErrCodeConflict, "duplicate value", err)
		case "23502", "23514", "22P02", "22007", "22008":
			return domain.WrapError(domain.ErrCodeInvalid, constraintMessage(pgErr), err)
		}
	}
	return err
}

func constraintMessage(pgErr *pgconn.PgError) string {
	if pgErr.ConstraintName != "" {
		return "constraint violation: " + pgErr.ConstraintName
	}
	if pgErr.ColumnName != "" {
		return "invalid value for " + pgErr.ColumnName
	}
	return "invalid value"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s as a literal substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
