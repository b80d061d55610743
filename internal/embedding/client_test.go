package embedding

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/palitext/suttasearch/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func TestVectorizeSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"vectors":[[0.1,0.2,0.3]]}`))
	})

	res := c.Vectorize(context.Background(), "hello")
	if !res.OK() {
		t.Fatalf("expected vector, got degraded: %s", res.Reason)
	}
	if len(res.Vector) != 3 {
		t.Errorf("vector length = %d, want 3", len(res.Vector))
	}
	if res.Reason != domain.DegradeNone {
		t.Errorf("reason = %q, want none", res.Reason)
	}
}

func TestVectorizeDegradesOnStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	res := c.Vectorize(context.Background(), "hello")
	if res.OK() {
		t.Fatal("expected degraded result")
	}
	if res.Reason != domain.DegradeStatus {
		t.Errorf("reason = %q, want %q", res.Reason, domain.DegradeStatus)
	}
}

func TestVectorizeDegradesOnMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	res := c.Vectorize(context.Background(), "hello")
	if res.OK() {
		t.Fatal("expected degraded result")
	}
	if res.Reason != domain.DegradeDecode {
		t.Errorf("reason = %q, want %q", res.Reason, domain.DegradeDecode)
	}
}

func TestVectorizeDegradesOnEmptyVectorList(t *testing.T) {
	// One empty vector for one text: well-formed but unusable.
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"vectors":[[]]}`))
	})

	res := c.Vectorize(context.Background(), "hello")
	if res.OK() {
		t.Fatal("expected degraded result")
	}
	if res.Reason != domain.DegradeEmpty {
		t.Errorf("reason = %q, want %q", res.Reason, domain.DegradeEmpty)
	}
}

func TestVectorizeDegradesOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"vectors":[[0.1]]}`))
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})

	res := c.Vectorize(context.Background(), "hello")
	if res.OK() {
		t.Fatal("expected degraded result")
	}
	if res.Reason != domain.DegradeTimeout {
		t.Errorf("reason = %q, want %q", res.Reason, domain.DegradeTimeout)
	}
}

func TestVectorizeDegradesOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on
	c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second})

	res := c.Vectorize(context.Background(), "hello")
	if res.OK() {
		t.Fatal("expected degraded result")
	}
	if res.Reason != domain.DegradeTransport {
		t.Errorf("reason = %q, want %q", res.Reason, domain.DegradeTransport)
	}
}

func TestEmbedEmptyInputSkipsNetwork(t *testing.T) {
	called := false
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { called = true })

	vecs, err := c.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 0 {
		t.Errorf("expected no vectors, got %d", len(vecs))
	}
	if called {
		t.Error("empty input must not hit the network")
	}
}

// Identical texts must embed to (near-)identical vectors: cosine ~ 1.0.
// Exercises the provider contract through a stub returning a fixed encoding.
func TestEmbedIdenticalTextsCosine(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"vectors":[[0.6,0.8],[0.6,0.8]]}`))
	})

	vecs, err := c.Embed(context.Background(), []string{"dhamma", "dhamma"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	if cos := cosine(vecs[0], vecs[1]); math.Abs(cos-1.0) > 1e-6 {
		t.Errorf("cosine = %g, want ~1.0", cos)
	}
}

func TestEmbedVectorCountMismatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"vectors":[[0.1]]}`))
	})

	if _, err := c.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error for vector count mismatch")
	}
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
