package ticket

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Plaintext payload recovered from a cookie issued by the framework itself
// (header and inner signature removed).
const issuedPayloadHex = "0102258fae9ac7e3d308fe250f13935afbd308011a630061006c00760069006e002e0062006f00740074006f006d00730040006c00650061006e006b00690074002e0063006f006d0043620061006e0064006900740073006f006600740077006100720065002e006c006f00630061006c006b0061006e00620061006e002e0063006f006d003a00350039006400640063003600320062002d0031006200340030002d0034006600650033002d0061006600650033002d00650031006200620031003100620062003800310037003000012f00ff"

func issuedTicket() Ticket {
	return Ticket{
		Version:        2,
		IssueDate:      time.Date(2016, 9, 23, 15, 38, 2, 250*int(time.Millisecond), time.UTC),
		ExpirationDate: time.Date(2016, 10, 23, 15, 38, 2, 250*int(time.Millisecond), time.UTC),
		IsPersistent:   true,
		Name:           "calvin.bottoms@leankit.com",
		CustomData:     "banditsoftware.localkanban.com:59ddc62b-1b40-4fe3-afe3-e1bb11bb8170",
		CookiePath:     "/",
	}
}

var timeEqual = cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })

func TestUnmarshalIssuedPayload(t *testing.T) {
	got, err := Unmarshal(mustHex(t, issuedPayloadHex), UnmarshalOptions{})
	require.NoError(t, err)

	if diff := cmp.Diff(issuedTicket(), *got, timeEqual); diff != "" {
		t.Fatalf("ticket mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	tickets := []Ticket{
		issuedTicket(),
		{
			Version:        1,
			IssueDate:      time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC),
			ExpirationDate: time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC),
			Name:           "test",
			CustomData:     "custom data",
			CookiePath:     "/",
		},
		{
			Version:        255,
			IssueDate:      time.Date(2020, 2, 29, 12, 0, 0, 0, time.UTC),
			ExpirationDate: time.Date(2020, 3, 1, 12, 0, 0, 0, time.UTC),
			Name:           "",
			CookiePath:     "/to/grandmothers/house",
		},
	}

	for _, want := range tickets {
		raw, err := Marshal(&want)
		require.NoError(t, err)
		assert.Len(t, raw, Size(&want))

		got, err := Unmarshal(raw, UnmarshalOptions{})
		require.NoError(t, err)
		if diff := cmp.Diff(want, *got, timeEqual); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestMarshalMatchesIssuedLayout(t *testing.T) {
	want := issuedTicket()
	raw, err := Marshal(&want)
	require.NoError(t, err)

	issued := mustHex(t, issuedPayloadHex)
	require.Len(t, raw, len(issued))
	// Dates differ only by the sub-millisecond ticks the framework wrote.
	assert.Equal(t, issued[:2], raw[:2])
	assert.Equal(t, issued[10], raw[10])
	assert.Equal(t, issued[19:], raw[19:])
}

func TestUnmarshalHeaderSkip(t *testing.T) {
	header := make([]byte, 32)
	payload := append(header, mustHex(t, issuedPayloadHex)...)

	got, err := Unmarshal(payload, UnmarshalOptions{HeaderSize: 32})
	require.NoError(t, err)
	assert.Equal(t, "calvin.bottoms@leankit.com", got.Name)

	_, err = Unmarshal(header[:10], UnmarshalOptions{HeaderSize: 32})
	var fe *FormatError
	assert.True(t, errors.As(err, &fe))
}

func TestUnmarshalRequiredVersion(t *testing.T) {
	raw := mustHex(t, issuedPayloadHex)

	got, err := Unmarshal(raw, UnmarshalOptions{RequiredVersion: 2})
	require.NoError(t, err)
	assert.Equal(t, uint8(2), got.Version)

	_, err = Unmarshal(raw, UnmarshalOptions{RequiredVersion: 3})
	assert.True(t, errors.Is(err, ErrVersionMismatch), "got %v", err)
}

func TestUnmarshalExpiration(t *testing.T) {
	raw := mustHex(t, issuedPayloadHex)
	before := time.Date(2016, 10, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2017, 10, 1, 0, 0, 0, 0, time.UTC)

	_, err := Unmarshal(raw, UnmarshalOptions{CheckExpiration: true, Now: before})
	require.NoError(t, err)

	_, err = Unmarshal(raw, UnmarshalOptions{CheckExpiration: true, Now: after})
	assert.True(t, errors.Is(err, ErrExpired))

	_, err = Unmarshal(raw, UnmarshalOptions{CheckExpiration: false, Now: after})
	require.NoError(t, err)
}

func TestUnmarshalMarkerBytes(t *testing.T) {
	cases := []struct {
		name        string
		offset      int
		description string
	}{
		{name: "format version", offset: 0, description: "format version"},
		{name: "spacer", offset: 10, description: "spacer"},
		{name: "footer", offset: -1, description: "footer"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := mustHex(t, issuedPayloadHex)
			idx := tc.offset
			if idx < 0 {
				idx = len(raw) + idx
			}
			raw[idx] ^= 0x01

			_, err := Unmarshal(raw, UnmarshalOptions{})
			var fe *FormatError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, tc.description, fe.Description)
			assert.Equal(t, idx, fe.Offset)
		})
	}
}

func TestUnmarshalTruncatedEverywhere(t *testing.T) {
	raw := mustHex(t, issuedPayloadHex)
	for n := 0; n < len(raw); n++ {
		_, err := Unmarshal(raw[:n], UnmarshalOptions{})
		var fe *FormatError
		require.True(t, errors.As(err, &fe), "prefix %d: got %v", n, err)
	}
}

func TestUnmarshalIgnoresTrailingBytes(t *testing.T) {
	raw := append(mustHex(t, issuedPayloadHex), 0xAA, 0xBB)
	_, err := Unmarshal(raw, UnmarshalOptions{})
	require.NoError(t, err)
}

func TestMarshalRejectsLongFields(t *testing.T) {
	long := make([]rune, 256)
	for i := range long {
		long[i] = 'x'
	}
	tk := issuedTicket()
	tk.CustomData = string(long)

	_, err := Marshal(&tk)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFieldTooLong))
	assert.Contains(t, err.Error(), "custom data")
}

func TestMarshalRejectsDatesOutsideTickRange(t *testing.T) {
	tk := issuedTicket()
	tk.ExpirationDate = time.Date(40000, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := Marshal(&tk)
	require.ErrorIs(t, err, ErrDateOutOfRange)
	assert.Contains(t, err.Error(), "expiration date")

	tk = issuedTicket()
	tk.IssueDate = time.Date(-1, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err = Marshal(&tk)
	require.ErrorIs(t, err, ErrDateOutOfRange)
	assert.Contains(t, err.Error(), "issue date")
}
