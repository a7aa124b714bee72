package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrEthical07/aspxauth"
)

type fakeSource struct {
	snapshot aspxauth.MetricsSnapshot
	mode     aspxauth.Mode
}

func (f fakeSource) MetricsSnapshot() aspxauth.MetricsSnapshot { return f.snapshot }
func (f fakeSource) Mode() aspxauth.Mode                       { return f.mode }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: aspxauth.MetricsSnapshot{
			Counters:   map[aspxauth.MetricID]uint64{},
			Histograms: map[aspxauth.MetricID][]uint64{},
		},
		mode: aspxauth.ModeLegacy,
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: aspxauth.MetricsSnapshot{
			Counters: map[aspxauth.MetricID]uint64{
				aspxauth.MetricDecodeSuccess:          7,
				aspxauth.MetricDecodeSignatureFailure: 2,
			},
			Histograms: map[aspxauth.MetricID][]uint64{
				aspxauth.MetricDecodeLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		mode: aspxauth.ModeKDF,
	})

	out := exp.Render()
	for _, want := range []string{
		"# TYPE aspxauth_decode_success_total counter",
		"aspxauth_decode_success_total 7",
		"aspxauth_decode_signature_failure_total 2",
		"aspxauth_decode_expired_total 0",
		`aspxauth_decode_latency_seconds_bucket{le="0.00001"} 1`,
		`aspxauth_decode_latency_seconds_bucket{le="+Inf"} 36`,
		"aspxauth_decode_latency_seconds_count 36",
		`aspxauth_engine_info{mode="dotnet45"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}

	if out != exp.Render() {
		t.Fatal("render output is not deterministic")
	}
}

func TestRenderFromEngine(t *testing.T) {
	engine, err := aspxauth.New().
		WithConfig(aspxauth.Config{
			ValidationKey: "709FC62CDB7CC79821DEBB2062FDED6795AD8CB37341B55B3763923BEEF662865AF7EC613F9A76171CA3C336ED119D1C103555D87D092BAD4A63F807592B0520",
			DecryptionKey: "9DA83917EE2DE9008FCB45986195A9BC11EF9496D67042C76B4052CEFA22EF45",
		}).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	_, _ = engine.DecodeString("87")

	out := NewPrometheusExporter(engine).Render()
	if !strings.Contains(out, "aspxauth_decode_signature_failure_total 1") {
		t.Fatalf("expected signature failure in output, got:\n%s", out)
	}
	if !strings.Contains(out, `aspxauth_engine_info{mode="legacy"} 1`) {
		t.Fatalf("expected legacy mode in output, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: aspxauth.MetricsSnapshot{
			Counters:   map[aspxauth.MetricID]uint64{aspxauth.MetricDecodeSuccess: 1},
			Histograms: map[aspxauth.MetricID][]uint64{},
		},
		mode: aspxauth.ModeLegacy,
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "aspxauth_decode_success_total 1") {
		t.Fatalf("unexpected body:\n%s", rec.Body.String())
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: aspxauth.MetricsSnapshot{
			Counters: map[aspxauth.MetricID]uint64{
				aspxauth.MetricDecodeSuccess:          1000,
				aspxauth.MetricDecodeSignatureFailure: 40,
				aspxauth.MetricDecodeExpired:          12,
				aspxauth.MetricEncodeSuccess:          800,
			},
			Histograms: map[aspxauth.MetricID][]uint64{
				aspxauth.MetricDecodeLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
		mode: aspxauth.ModeLegacy,
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
