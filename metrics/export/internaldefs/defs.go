package internaldefs

import (
	"github.com/MrEthical07/aspxauth"
)

// CounterDef maps an engine counter to its exported name.
type CounterDef struct {
	ID   aspxauth.MetricID
	Name string
	Help string
}

// HistogramDef maps an engine histogram to its exported name.
type HistogramDef struct {
	ID   aspxauth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: aspxauth.MetricDecodeSuccess, Name: "aspxauth_decode_success_total", Help: "Cookies decoded to a valid ticket."},
	{ID: aspxauth.MetricDecodeSignatureFailure, Name: "aspxauth_decode_signature_failure_total", Help: "Cookies rejected for an outer or inner signature mismatch."},
	{ID: aspxauth.MetricDecodeCryptoFailure, Name: "aspxauth_decode_crypto_failure_total", Help: "Cookies rejected during hex decoding, decryption or unpadding."},
	{ID: aspxauth.MetricDecodeFormatFailure, Name: "aspxauth_decode_format_failure_total", Help: "Decrypted payloads rejected as structurally invalid."},
	{ID: aspxauth.MetricDecodeVersionMismatch, Name: "aspxauth_decode_version_mismatch_total", Help: "Tickets rejected for their embedded ticket version."},
	{ID: aspxauth.MetricDecodeExpired, Name: "aspxauth_decode_expired_total", Help: "Tickets rejected as expired."},
	{ID: aspxauth.MetricEncodeSuccess, Name: "aspxauth_encode_success_total", Help: "Cookies issued."},
	{ID: aspxauth.MetricEncodeFailure, Name: "aspxauth_encode_failure_total", Help: "Encode calls that returned an error."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: aspxauth.MetricDecodeLatency, Name: "aspxauth_decode_latency_seconds", Help: "Decode latency histogram."},
}

// HistogramBounds are the upper bounds, in seconds, of the engine latency buckets.
var HistogramBounds = []string{
	"0.00001",
	"0.000025",
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"+Inf",
}

// HistogramBoundSuffix are HistogramBounds in a form usable inside instrument names.
var HistogramBoundSuffix = []string{
	"10us",
	"25us",
	"50us",
	"100us",
	"250us",
	"500us",
	"1ms",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight bucket array, zero filling short input.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
