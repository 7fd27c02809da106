package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestStartExpiredCleaner_Success(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	mock.ExpectExec("DELETE FROM kv_entries").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartExpiredCleaner(ctx, dbMock, 10*time.Millisecond, zap.NewNop())

	time.Sleep(200 * time.Millisecond)
	cancel()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStartExpiredCleaner_ErrorLogged(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	mock.ExpectExec("DELETE FROM kv_entries").
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(fmt.Errorf("db fail"))

	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.ErrorLevel,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartExpiredCleaner(ctx, dbMock, 10*time.Millisecond, zap.New(core))

	time.Sleep(200 * time.Millisecond)
	cancel()

	if out := buf.String(); !strings.Contains(out, "failed to clean expired entries") {
		t.Errorf("expected error log, got:\n%s", out)
	}
}

func TestStartExpiredCleaner_CancelBeforeTicker(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	ctx, cancel := context.WithCancel(context.Background())
	StartExpiredCleaner(ctx, dbMock, 100*time.Millisecond, zap.NewNop())
	cancel()

	time.Sleep(50 * time.Millisecond)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected sql calls: %v", err)
	}
}
