package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockEmbedding struct {
	err error
}

func (m *mockEmbedding) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheckAllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockEmbedding{}, &mockPinger{})
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("status = %q, want %q", report.Status, Healthy)
	}
	for name, res := range report.Checks {
		if res != CheckOK {
			t.Errorf("check %q = %q, want ok", name, res)
		}
	}
	if len(report.Checks) != 3 {
		t.Errorf("got %d checks, want 3", len(report.Checks))
	}
}

func TestCheckDegradedOnEmbeddingFailure(t *testing.T) {
	svc := New(&mockPinger{}, &mockEmbedding{err: errors.New("down")}, nil)
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("status = %q, want %q", report.Status, Degraded)
	}
	if report.Checks["embedding"] != CheckError {
		t.Errorf("embedding check = %q, want error", report.Checks["embedding"])
	}
	if report.Checks["index"] != CheckOK {
		t.Errorf("index check = %q, want ok", report.Checks["index"])
	}
}

func TestCheckSkipsAbsentComponents(t *testing.T) {
	svc := New(&mockPinger{}, nil, nil)
	report := svc.Check(context.Background())

	if len(report.Checks) != 1 {
		t.Errorf("got %d checks, want 1", len(report.Checks))
	}
}
