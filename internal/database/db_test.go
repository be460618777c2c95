package database

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_Ping(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	db := &DB{Pool: mock}

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	assert.NoError(t, db.Ping(context.Background()))
	assert.ErrorContains(t, db.Ping(context.Background()), "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}
