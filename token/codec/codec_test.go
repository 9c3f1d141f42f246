package codec_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/jrsteele09/go-auth-relay/token/codec"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	header := codec.Header{Algorithm: "HS256", Type: "JWT", KeyID: "k1"}
	claims := codec.Claims{
		"iss": "https://issuer.example",
		"sub": "user-42",
		"aud": "client-123",
	}
	signature := []byte("not-a-real-signature")

	wire, err := codec.Encode(header, claims, signature)
	require.NoError(t, err)

	token, err := codec.Decode(wire)
	require.NoError(t, err)
	require.Equal(t, header, token.Header)
	require.Equal(t, "https://issuer.example", token.Claims.Issuer())
	require.Equal(t, "user-42", token.Claims.Subject())
	require.Equal(t, signature, token.Signature)
	require.Equal(t, wire, token.Raw)
}

func TestDecodeSigningInputIsLiteral(t *testing.T) {
	// The payload JSON uses a key order and spacing json.Marshal would never
	// produce. SigningInput must still hold these exact wire bytes.
	headerSeg := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256"}`))
	claimsSeg := base64.RawURLEncoding.EncodeToString([]byte(`{"sub": "u1",  "iss": "i1"}`))
	signatureSeg := base64.RawURLEncoding.EncodeToString([]byte("sig"))
	wire := headerSeg + "." + claimsSeg + "." + signatureSeg

	token, err := codec.Decode(wire)
	require.NoError(t, err)
	require.Equal(t, headerSeg+"."+claimsSeg, string(token.SigningInput))
	require.Equal(t, "u1", token.Claims.Subject())
}

func TestDecodeMalformed(t *testing.T) {
	valid := func() string {
		wire, err := codec.Encode(codec.Header{Algorithm: "HS256"}, codec.Claims{"sub": "u"}, []byte("s"))
		require.NoError(t, err)
		return wire
	}()

	tests := []struct {
		name string
		wire string
	}{
		{"empty input", ""},
		{"one segment", "abc"},
		{"two segments", "abc.def"},
		{"four segments", valid + ".extra"},
		{"empty header segment", "." + strings.SplitN(valid, ".", 2)[1]},
		{"empty signature segment", valid[:strings.LastIndex(valid, ".")+1]},
		{"standard base64 padding", "eyJhbGciOiJIUzI1NiJ9==.eyJzdWIiOiJ1In0.c2ln"},
		{"header not JSON", base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".eyJzdWIiOiJ1In0.c2ln"},
		{"header missing alg", base64.RawURLEncoding.EncodeToString([]byte(`{"typ":"JWT"}`)) + ".eyJzdWIiOiJ1In0.c2ln"},
		{"oversized input", strings.Repeat("a", 9000) + ".b.c"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Decode(tc.wire)
			require.Error(t, err)
			require.ErrorIs(t, err, codec.ErrMalformedToken)
		})
	}
}

func TestDecodeAllowsUnknownHeaderAndClaimFields(t *testing.T) {
	headerSeg := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","cty":"whatever"}`))
	claimsSeg := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"u1","custom":{"nested":true}}`))
	wire := headerSeg + "." + claimsSeg + "." + base64.RawURLEncoding.EncodeToString([]byte("s"))

	token, err := codec.Decode(wire)
	require.NoError(t, err)
	require.Equal(t, "u1", token.Claims.Subject())
	require.Contains(t, token.Claims, "custom")
}

func TestAppendSignatureMatchesEncode(t *testing.T) {
	header := codec.Header{Algorithm: "RS256", KeyID: "kid-1"}
	claims := codec.Claims{"iss": "i", "aud": []string{"a", "b"}}
	signature := []byte{0x01, 0x02, 0xff}

	signingInput, err := codec.EncodeSigningInput(header, claims)
	require.NoError(t, err)

	fromParts := codec.AppendSignature(signingInput, signature)
	encoded, err := codec.Encode(header, claims, signature)
	require.NoError(t, err)
	require.Equal(t, encoded, fromParts)
}
