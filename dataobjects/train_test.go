package dataobjects

import (
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	trainSelectByNumber = `SELECT train_id, number, operator, type, shortname FROM train WHERE number = $1 AND operator = $2`
	trainInsert         = `INSERT INTO train (number,operator,type,shortname) VALUES ($1,$2,$3,$4) ON CONFLICT (number, operator) DO NOTHING RETURNING train_id`
)

func trainColumns() []string {
	return []string{"train_id", "number", "operator", "type", "shortname"}
}

func TestTrainResolveInserts(t *testing.T) {
	node, mock := testNode(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(trainSelectByNumber)).
		WithArgs("3033", "NMBS").
		WillReturnRows(sqlmock.NewRows(trainColumns()))
	mock.ExpectQuery(regexp.QuoteMeta(trainInsert)).
		WillReturnRows(sqlmock.NewRows([]string{"train_id"}).AddRow(11))
	mock.ExpectCommit()

	train := &Train{Number: "3033", Operator: "NMBS", Type: toNullString("IC")}
	id, err := train.Resolve(node)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)

	expectationsMet(t, mock)
}

func TestTrainResolveExisting(t *testing.T) {
	node, mock := testNode(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(trainSelectByNumber)).
		WithArgs("3033", "NMBS").
		WillReturnRows(sqlmock.NewRows(trainColumns()).AddRow(11, "3033", "NMBS", "IC", nil))
	mock.ExpectCommit()

	train := &Train{Number: "3033", Operator: "NMBS"}
	id, err := train.Resolve(node)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)

	expectationsMet(t, mock)
}

func TestTrainResolveConcurrentWinner(t *testing.T) {
	node, mock := testNode(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(trainSelectByNumber)).
		WithArgs("562", "NMBS").
		WillReturnRows(sqlmock.NewRows(trainColumns()))
	mock.ExpectQuery(regexp.QuoteMeta(trainInsert)).
		WillReturnRows(sqlmock.NewRows([]string{"train_id"}))
	mock.ExpectQuery(regexp.QuoteMeta(trainSelectByNumber)).
		WithArgs("562", "NMBS").
		WillReturnRows(sqlmock.NewRows(trainColumns()).AddRow(12, "562", "NMBS", "L", nil))
	mock.ExpectCommit()

	train := &Train{Number: "562", Operator: "NMBS"}
	id, err := train.Resolve(node)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	expectationsMet(t, mock)
}
