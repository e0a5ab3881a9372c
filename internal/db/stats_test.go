package db

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/TodoKeeper/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStartPoolStatsReporter_PublishesStats(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	m := metrics.New(prometheus.NewRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartPoolStatsReporter(ctx, dbMock, 10*time.Millisecond, m, zap.NewNop())

	want := float64(dbMock.Stats().OpenConnections)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.DBConnectionsOpen) == want &&
			testutil.ToFloat64(m.DBConnectionsIdle) == float64(dbMock.Stats().Idle)
	}, time.Second, 10*time.Millisecond)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected sql calls: %v", err)
	}
}

func TestStartPoolStatsReporter_CancelBeforeTicker(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	core, logs := observer.New(zap.WarnLevel)
	m := metrics.New(prometheus.NewRegistry())
	m.DBConnectionsOpen.Set(-1)

	ctx, cancel := context.WithCancel(context.Background())
	StartPoolStatsReporter(ctx, dbMock, 100*time.Millisecond, m, zap.New(core))
	cancel()

	time.Sleep(150 * time.Millisecond)

	if got := testutil.ToFloat64(m.DBConnectionsOpen); got != -1 {
		t.Errorf("gauge updated after cancel: %v", got)
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected logs: %v", logs.All())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected sql calls: %v", err)
	}
}
