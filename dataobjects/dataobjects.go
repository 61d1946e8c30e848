package dataobjects

import (
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
)

var sdb sq.StatementBuilderType

func init() {
	sdb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// ErrNotFound is returned by getters when no row matches
var ErrNotFound = errors.New("dataobjects: not found")

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
