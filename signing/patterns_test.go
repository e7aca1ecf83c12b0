package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ccxtgo/unified/spec"
)

func fixedDeps(now time.Time, nonce string) Deps {
	return Deps{
		Now:   func() time.Time { return now },
		Nonce: func() string { return nonce },
	}
}

// TestHMACSHA256QuerySignature is S5 from §8: fixing time and params, the
// signature must equal hex(HMAC-SHA256(secret, "symbol=BTCUSDT&timestamp=1700000000000")).
func TestHMACSHA256QuerySignature(t *testing.T) {
	t.Parallel()

	req := Request{
		Method:  spec.MethodGET,
		BaseURL: "https://api.binance.com",
		Path:    "/api/v3/order",
		Params:  map[string]any{"symbol": "BTCUSDT"},
	}
	creds := Credentials{APIKey: "K", Secret: "S"}
	cfg := spec.Signing{Pattern: spec.PatternHMACSHA256Query, TimestampFormat: spec.TimestampMillis}
	deps := fixedDeps(time.UnixMilli(1700000000000), "")

	signed, err := Sign(spec.PatternHMACSHA256Query, req, creds, cfg, deps, nil)
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("S"))
	mac.Write([]byte("symbol=BTCUSDT&timestamp=1700000000000"))
	expectedSig := hex.EncodeToString(mac.Sum(nil))

	require.Contains(t, signed.URL, "signature="+expectedSig)
	require.Contains(t, signed.URL, "symbol=BTCUSDT")
	require.Contains(t, signed.URL, "timestamp=1700000000000")

	var foundKeyHeader bool
	for _, h := range signed.Headers {
		if h.Name == "X-MBX-APIKEY" && h.Value == "K" {
			foundKeyHeader = true
		}
	}
	require.True(t, foundKeyHeader)
}

// TestSigningDeterminism is Property 5: fixing (time, nonce, credentials,
// request) produces identical output across repeated calls, for every
// built-in pattern that needs neither a password nor a custom script.
func TestSigningDeterminism(t *testing.T) {
	t.Parallel()

	req := Request{
		Method:  spec.MethodPOST,
		BaseURL: "https://example.test",
		Path:    "/v1/orders",
		Body:    []byte(`{"side":"buy"}`),
		Params:  map[string]any{"symbol": "BTC/USDT"},
	}
	creds := Credentials{APIKey: "key", Secret: "c2VjcmV0"}
	deps := fixedDeps(time.UnixMilli(1700000000000), "nonce-123")

	patterns := []spec.SigningPattern{
		spec.PatternHMACSHA256Query,
		spec.PatternHMACSHA256Headers,
		spec.PatternHMACSHA512Nonce,
		spec.PatternHMACSHA512Gate,
		spec.PatternHMACSHA384Payload,
		spec.PatternDeribit,
	}

	for _, p := range patterns {
		p := p
		t.Run(string(p), func(t *testing.T) {
			t.Parallel()
			cfg := spec.Signing{Pattern: p}
			first, err := Sign(p, req, creds, cfg, deps, nil)
			require.NoError(t, err)
			second, err := Sign(p, req, creds, cfg, deps, nil)
			require.NoError(t, err)
			require.Equal(t, first, second)
		})
	}
}

// TestSigningNoSensitiveLeak is Property 6: no pattern writes the raw
// secret into any returned header value.
func TestSigningNoSensitiveLeak(t *testing.T) {
	t.Parallel()

	const secret = "super-secret-value"
	req := Request{Method: spec.MethodGET, BaseURL: "https://x.test", Path: "/p", Params: map[string]any{"a": "b"}}
	creds := Credentials{APIKey: "key", Secret: secret, Password: "pass"}
	deps := fixedDeps(time.UnixMilli(1700000000000), "nonce")

	for _, p := range Patterns() {
		if p == spec.PatternCustom {
			continue // custom modules are caller-provided; nothing to assert generically
		}
		cfg := spec.Signing{Pattern: p}
		signed, err := Sign(p, req, creds, cfg, deps, nil)
		if err != nil {
			continue // patterns requiring base64 secrets etc. may reject this fixture
		}
		for _, h := range signed.Headers {
			require.NotContains(t, h.Value, secret)
		}
		require.NotContains(t, string(signed.Body), secret)
	}
}

func TestHMACSHA512NonceRejectsBadBase64Secret(t *testing.T) {
	t.Parallel()
	req := Request{Method: spec.MethodPOST, BaseURL: "https://kraken.test", Path: "/0/private/AddOrder", Params: map[string]any{}}
	creds := Credentials{APIKey: "k", Secret: "not-valid-base64!!"}
	cfg := spec.Signing{Pattern: spec.PatternHMACSHA512Nonce}
	deps := fixedDeps(time.Now(), "1")

	_, err := Sign(spec.PatternHMACSHA512Nonce, req, creds, cfg, deps, nil)
	require.Error(t, err)
}

func TestUnsupportedTimestampFormat(t *testing.T) {
	t.Parallel()
	req := Request{Method: spec.MethodGET, BaseURL: "https://x.test", Path: "/p", Params: map[string]any{}}
	creds := Credentials{APIKey: "k", Secret: "s"}
	cfg := spec.Signing{Pattern: spec.PatternHMACSHA256Query, TimestampFormat: "nanoseconds"}
	deps := fixedDeps(time.Now(), "")

	_, err := Sign(spec.PatternHMACSHA256Query, req, creds, cfg, deps, nil)
	require.Error(t, err)
}
