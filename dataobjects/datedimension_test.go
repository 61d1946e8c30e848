package dataobjects

import (
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKey(t *testing.T) {
	key := DateKey(time.Date(2025, 8, 5, 10, 30, 0, 0, time.UTC))
	assert.Equal(t, int64(20250805103000), key)

	key = DateKey(time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, int64(20251231235959), key)

	// the derivation is deterministic, so independent runs agree on the key
	// without coordination
	a := DateKey(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	b := DateKey(time.Date(2025, 1, 2, 3, 4, 5, 999999999, time.UTC))
	assert.Equal(t, a, b)
}

func TestNewDateDimension(t *testing.T) {
	d := NewDateDimension(time.Date(2025, 8, 5, 10, 30, 45, 0, time.UTC))
	assert.Equal(t, int64(20250805103045), d.ID)
	assert.Equal(t, 2025, d.Year)
	assert.Equal(t, 8, d.Month)
	assert.Equal(t, 5, d.Day)
	assert.Equal(t, 10, d.Hour)
	assert.Equal(t, 30, d.Minute)
	assert.Equal(t, 45, d.Second)
	assert.Equal(t, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC), d.FullDate)
}

func TestDateDimensionEnsureIdempotent(t *testing.T) {
	node, mock := testNode(t)

	insert := regexp.QuoteMeta(`INSERT INTO date_dimension (date_id,full_date,year,month,day,hour,minute,second) VALUES ($1,$2,$3,$4,$5,$6,$7,$8) ON CONFLICT (date_id) DO NOTHING`)

	mock.ExpectBegin()
	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// second call hits the conflict guard and affects no rows
	mock.ExpectBegin()
	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	d := NewDateDimension(time.Date(2025, 8, 5, 10, 30, 0, 0, time.UTC))
	id, err := d.Ensure(node)
	require.NoError(t, err)
	assert.Equal(t, int64(20250805103000), id)

	id, err = d.Ensure(node)
	require.NoError(t, err)
	assert.Equal(t, int64(20250805103000), id)

	expectationsMet(t, mock)
}
