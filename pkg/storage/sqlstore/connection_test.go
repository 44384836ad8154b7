package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPingMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	return db, mock
}

func TestParseReplicaURLs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", nil},
		{"single URL", "postgres://localhost:5432/db", []string{"postgres://localhost:5432/db"}},
		{"whitespace and empty entries", " postgres://h1/db , ,postgres://h2/db,", []string{"postgres://h1/db", "postgres://h2/db"}},
		{"only commas", " , , ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseReplicaURLs(tt.input))
		})
	}
}

func TestConnectionManager_Replica(t *testing.T) {
	t.Run("no replicas falls back to primary", func(t *testing.T) {
		primary := &sql.DB{}
		cm := &ConnectionManager{primary: primary}
		assert.Same(t, primary, cm.Replica())
	})

	t.Run("round-robin", func(t *testing.T) {
		r1, r2, r3 := &sql.DB{}, &sql.DB{}, &sql.DB{}
		cm := &ConnectionManager{primary: &sql.DB{}, replicas: []*sql.DB{r1, r2, r3}}

		selections := make(map[*sql.DB]int)
		for i := 0; i < 30; i++ {
			selections[cm.Replica()]++
		}
		assert.Equal(t, 10, selections[r1])
		assert.Equal(t, 10, selections[r2])
		assert.Equal(t, 10, selections[r3])
	})
}

func TestConnectionManager_HealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("primary healthy", func(t *testing.T) {
		db, mock := newPingMock(t)
		defer db.Close()
		mock.ExpectPing()

		cm := newConnectionManager(db, ConnectionConfig{Dialect: Postgres}, nil)
		assert.NoError(t, cm.HealthCheck(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("primary down", func(t *testing.T) {
		db, mock := newPingMock(t)
		defer db.Close()
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		cm := newConnectionManager(db, ConnectionConfig{Dialect: Postgres}, nil)
		err := cm.HealthCheck(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "primary unhealthy")
	})

	t.Run("all replicas down", func(t *testing.T) {
		db, mock := newPingMock(t)
		defer db.Close()
		replica, rmock := newPingMock(t)
		defer replica.Close()

		mock.ExpectPing()
		rmock.ExpectPing().WillReturnError(errors.New("timeout"))

		cm := newConnectionManager(db, ConnectionConfig{Dialect: Postgres}, nil)
		cm.replicas = []*sql.DB{replica}

		err := cm.HealthCheck(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "replica-0")
	})
}

func TestConnectionManager_RemoveUnhealthyReplicas(t *testing.T) {
	primary, _ := newPingMock(t)
	defer primary.Close()
	good, goodMock := newPingMock(t)
	defer good.Close()
	bad, badMock := newPingMock(t)

	goodMock.ExpectPing()
	badMock.ExpectPing().WillReturnError(errors.New("gone"))
	badMock.ExpectClose()

	cm := newConnectionManager(primary, ConnectionConfig{Dialect: Postgres}, nil)
	cm.replicas = []*sql.DB{good, bad}

	removed := cm.RemoveUnhealthyReplicas(context.Background())
	assert.Equal(t, 1, removed)
	assert.Equal(t, []*sql.DB{good}, cm.replicas)
	assert.NoError(t, badMock.ExpectationsWereMet())
}

func TestConnectionManager_Close(t *testing.T) {
	primary, mock := newPingMock(t)
	replica, rmock := newPingMock(t)
	mock.ExpectClose()
	rmock.ExpectClose().WillReturnError(errors.New("busy"))

	cm := newConnectionManager(primary, ConnectionConfig{Dialect: Postgres}, nil)
	cm.replicas = []*sql.DB{replica}

	err := cm.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replica-0 close error")
	assert.Nil(t, cm.replicas)
}

func TestConnectionManager_Stats(t *testing.T) {
	primary, _ := newPingMock(t)
	defer primary.Close()

	cm := newConnectionManager(primary, ConnectionConfig{Dialect: Postgres}, nil)
	stats := cm.Stats()
	assert.Empty(t, stats.Replicas)
	assert.GreaterOrEqual(t, stats.Primary.MaxOpenConnections, 0)
}

func TestReplicaMaxConns(t *testing.T) {
	assert.Equal(t, 10, replicaMaxConns(20))
	assert.Equal(t, 2, replicaMaxConns(3))
	assert.Equal(t, 2, replicaMaxConns(0))
}
