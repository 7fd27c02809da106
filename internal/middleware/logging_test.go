package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithRequestLogging(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		core, logs := observer.New(zapcore.DebugLevel)
		h := WithRequestLogging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/v1/grocery/grocery-items/3/", nil))

		entries := logs.All()
		if len(entries) != 1 {
			t.Fatalf("expected one log entry, got %d", len(entries))
		}
		if entries[0].Level != tt.level {
			t.Errorf("status %d: expected level %s, got %s", tt.status, tt.level, entries[0].Level)
		}
		fields := entries[0].ContextMap()
		if fields["method"] != "DELETE" || fields["path"] != "/api/v1/grocery/grocery-items/3/" {
			t.Errorf("unexpected fields %v", fields)
		}
		if fields["status"] != int64(tt.status) {
			t.Errorf("expected status field %d, got %v", tt.status, fields["status"])
		}
	}
}
