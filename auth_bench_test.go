package aspxauth

import (
	"testing"
	"time"
)

func BenchmarkDecodeLegacy(b *testing.B) {
	e := buildEngine(b, decodeConfig(), decodeClock)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.DecodeString(version2Cookie); err != nil {
			b.Fatalf("decode failed: %v", err)
		}
	}
}

func BenchmarkDecodeKDF(b *testing.B) {
	cfg := encodeConfig()
	cfg.Mode = ModeKDF
	e := buildEngine(b, cfg, decodeClock)
	cookie, err := e.EncodeString(TicketRequest{Name: "bench", IssueDate: decodeClock})
	if err != nil {
		b.Fatalf("encode failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.DecodeString(cookie); err != nil {
			b.Fatalf("decode failed: %v", err)
		}
	}
}

func BenchmarkDecodeRejectSignature(b *testing.B) {
	e := buildEngine(b, decodeConfig(), decodeClock)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.DecodeString(innerTamperedCookie); err == nil {
			b.Fatal("expected rejection")
		}
	}
}

func BenchmarkEncodeParallel(b *testing.B) {
	e := buildEngine(b, encodeConfig(), decodeClock)
	req := TicketRequest{Name: "bench", CustomData: "tenant:1234", IssueDate: decodeClock, ExpirationDate: decodeClock.Add(time.Hour)}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := e.EncodeString(req); err != nil {
				b.Errorf("encode failed: %v", err)
				return
			}
		}
	})
}
