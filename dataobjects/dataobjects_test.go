package dataobjects

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gbl08ma/sqalx"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// testNode returns a sqalx node backed by a sqlmock database
func testNode(t *testing.T) (sqalx.Node, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	node, err := sqalx.New(sqlx.NewDb(db, "sqlmock"))
	require.NoError(t, err)
	return node, mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	require.NoError(t, mock.ExpectationsWereMet())
}
