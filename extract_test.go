package vsmark

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func staticResolver(signerID string, pub ed25519.PublicKey) KeyResolver {
	return &StaticResolver{Keys: map[string]crypto.PublicKey{signerID: pub}}
}

func TestVerifyRoundtripBasic(t *testing.T) {
	t.Parallel()

	pub, priv := testKeypair(t)
	embedded, err := EmbedMetadata("Hello World", priv, EmbedOptions{
		SignerID:  "demo",
		Timestamp: "2024-01-01T00:00:00Z",
		ModelID:   "m1",
	})
	if err != nil {
		t.Fatal(err)
	}

	payload, valid, signerID := VerifyMetadata(embedded, staticResolver("demo", pub), nil)
	if !valid {
		t.Fatal("verification failed for a freshly embedded payload")
	}
	if signerID != "demo" {
		t.Fatalf("signerID=%q, want demo", signerID)
	}
	if payload == nil || payload.ModelID != "m1" {
		t.Fatalf("payload=%+v, want model_id m1", payload)
	}
	if payload.Timestamp != "2024-01-01T00:00:00Z" {
		t.Fatalf("timestamp=%q", payload.Timestamp)
	}
	if payload.Format != FormatBasic {
		t.Fatalf("format=%q", payload.Format)
	}
}

func TestVerifyRoundtripAllSerializations(t *testing.T) {
	t.Parallel()

	pub, priv := testKeypair(t)
	for _, serialization := range []SerializationFormat{
		SerializationJSON,
		SerializationCBOR,
		SerializationJUMBF,
	} {
		t.Run(string(serialization), func(t *testing.T) {
			t.Parallel()
			embedded, err := EmbedMetadata("The quick brown fox.", priv, EmbedOptions{
				SignerID:      "demo",
				Timestamp:     "2024-01-01T00:00:00Z",
				Serialization: serialization,
				CustomMetadata: map[string]any{
					"source": "unit",
					"run":    7,
				},
			})
			if err != nil {
				t.Fatalf("embed: %v", err)
			}

			payload, valid, signerID := VerifyMetadata(embedded, staticResolver("demo", pub), nil)
			if !valid {
				t.Fatalf("verification failed over %s transport", serialization)
			}
			if signerID != "demo" {
				t.Fatalf("signerID=%q", signerID)
			}
			if payload.CustomMetadata["source"] != "unit" {
				t.Fatalf("custom metadata lost: %v", payload.CustomMetadata)
			}
		})
	}
}

func TestVerifyRoundtripManifest(t *testing.T) {
	t.Parallel()

	pub, priv := testKeypair(t)
	embedded, err := EmbedMetadata("Generated output follows here.", priv, EmbedOptions{
		SignerID:       "demo",
		Timestamp:      "2024-01-01T00:00:00Z",
		MetadataFormat: FormatManifest,
		ModelID:        "m1",
		ClaimGenerator: "vsmark/1.0",
		Actions:        []map[string]any{{"action": "created", "when": "2024-01-01T00:00:00Z"}},
		CustomClaims:   map[string]any{"review": "approved"},
	})
	if err != nil {
		t.Fatal(err)
	}

	payload, valid, _ := VerifyMetadata(embedded, staticResolver("demo", pub), nil)
	if !valid {
		t.Fatal("manifest verification failed")
	}
	if payload.Format != FormatManifest {
		t.Fatalf("format=%q", payload.Format)
	}
	if payload.Manifest == nil {
		t.Fatal("manifest missing")
	}
	if payload.Manifest.ClaimGenerator != "vsmark/1.0" {
		t.Fatalf("claim_generator=%q", payload.Manifest.ClaimGenerator)
	}
	if payload.Manifest.AIInfo["model_id"] != "m1" {
		t.Fatalf("ai_info=%v", payload.Manifest.AIInfo)
	}
	if len(payload.Manifest.Actions) != 1 || payload.Manifest.Actions[0]["action"] != "created" {
		t.Fatalf("actions=%v", payload.Manifest.Actions)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	t.Parallel()

	_, privA := testKeypair(t)
	pubB, _ := testKeypair(t)

	embedded, err := EmbedMetadata("Hello World", privA, EmbedOptions{
		SignerID:  "demo",
		Timestamp: "2024-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}

	payload, valid, signerID := VerifyMetadata(embedded, staticResolver("demo", pubB), nil)
	if valid {
		t.Fatal("verification succeeded with the wrong key")
	}
	if payload != nil {
		t.Fatal("payload returned without ReturnPayloadOnFailure")
	}
	if signerID != "demo" {
		t.Fatalf("signerID=%q, want demo even on failure", signerID)
	}
}

func TestVerifyUnknownSigner(t *testing.T) {
	t.Parallel()

	_, priv := testKeypair(t)
	embedded, err := EmbedMetadata("Hello World", priv, EmbedOptions{
		SignerID:  "demo",
		Timestamp: "2024-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}

	resolver := KeyResolverFunc(func(string) (crypto.PublicKey, error) {
		return nil, nil
	})
	payload, valid, signerID := VerifyMetadata(embedded, resolver, nil)
	if valid || payload != nil {
		t.Fatal("verdict must be false with no payload")
	}
	if signerID != "demo" {
		t.Fatalf("signerID=%q", signerID)
	}
}

func TestVerifyResolverError(t *testing.T) {
	t.Parallel()

	_, priv := testKeypair(t)
	embedded, err := EmbedMetadata("Hello World", priv, EmbedOptions{
		SignerID:  "demo",
		Timestamp: "2024-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}

	resolver := KeyResolverFunc(func(string) (crypto.PublicKey, error) {
		return nil, errors.New("keystore offline")
	})
	_, valid, signerID := VerifyMetadata(embedded, resolver, nil)
	if valid {
		t.Fatal("resolver error must fail verification")
	}
	if signerID != "demo" {
		t.Fatalf("signerID=%q", signerID)
	}
}

func TestVerifyResolverPanic(t *testing.T) {
	t.Parallel()

	_, priv := testKeypair(t)
	embedded, err := EmbedMetadata("Hello World", priv, EmbedOptions{
		SignerID:  "demo",
		Timestamp: "2024-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}

	resolver := KeyResolverFunc(func(string) (crypto.PublicKey, error) {
		panic("keystore exploded")
	})
	_, valid, signerID := VerifyMetadata(embedded, resolver, nil)
	if valid {
		t.Fatal("resolver panic must fail verification, not propagate")
	}
	if signerID != "demo" {
		t.Fatalf("signerID=%q", signerID)
	}
}

func TestVerifyNonEd25519Key(t *testing.T) {
	t.Parallel()

	_, priv := testKeypair(t)
	embedded, err := EmbedMetadata("Hello World", priv, EmbedOptions{
		SignerID:  "demo",
		Timestamp: "2024-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	resolver := KeyResolverFunc(func(string) (crypto.PublicKey, error) {
		return &ecKey.PublicKey, nil
	})
	_, valid, _ := VerifyMetadata(embedded, resolver, nil)
	if valid {
		t.Fatal("non-Ed25519 key must be rejected")
	}
}

func TestVerifyReturnPayloadOnFailure(t *testing.T) {
	t.Parallel()

	_, privA := testKeypair(t)
	pubB, _ := testKeypair(t)

	embedded, err := EmbedMetadata("Hello World", privA, EmbedOptions{
		SignerID:  "demo",
		Timestamp: "2024-01-01T00:00:00Z",
		ModelID:   "m1",
	})
	if err != nil {
		t.Fatal(err)
	}

	payload, valid, signerID := VerifyMetadata(embedded, staticResolver("demo", pubB),
		&VerifyOptions{ReturnPayloadOnFailure: true})
	if valid {
		t.Fatal("wrong key verified")
	}
	if payload == nil || payload.ModelID != "m1" {
		t.Fatalf("payload=%+v, want unauthenticated payload back", payload)
	}
	if signerID != "demo" {
		t.Fatalf("signerID=%q", signerID)
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	t.Parallel()

	pub, priv := testKeypair(t)
	embedded, err := EmbedMetadata("Hello World", priv, EmbedOptions{
		SignerID:  "demo",
		Timestamp: "2024-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Flip one byte inside the timestamp value so the envelope still
	// parses but the payload no longer matches the signature.
	raw := DecodeBytes(embedded)
	idx := strings.Index(string(raw), "2024")
	if idx < 0 {
		t.Fatal("timestamp not found in envelope bytes")
	}
	raw[idx] = '3'
	tampered := "X" + EncodeBytes(raw)

	payload, valid, signerID := VerifyMetadata(tampered, staticResolver("demo", pub), nil)
	if valid {
		t.Fatal("tampered payload verified")
	}
	if payload != nil {
		t.Fatal("tampered payload returned without the failure flag")
	}
	if signerID != "demo" {
		t.Fatalf("signerID=%q", signerID)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	t.Parallel()

	pub, priv := testKeypair(t)
	embedded, err := EmbedMetadata("Hello World", priv, EmbedOptions{
		SignerID:  "demo",
		Timestamp: "2024-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}

	raw := DecodeBytes(embedded)
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatal(err)
	}
	env["signature"] = json.RawMessage(`"not-even-base64!!!"`)
	mangled, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}

	_, valid, _ := VerifyMetadata("X"+EncodeBytes(mangled), staticResolver("demo", pub), nil)
	if valid {
		t.Fatal("mangled signature verified")
	}
}

func TestVerifyNoMetadata(t *testing.T) {
	t.Parallel()

	pub, _ := testKeypair(t)
	payload, valid, signerID := VerifyMetadata("just plain text", staticResolver("demo", pub), nil)
	if payload != nil || valid || signerID != "" {
		t.Fatalf("got (%v, %v, %q), want (nil, false, \"\")", payload, valid, signerID)
	}
}

func TestVerifyEmptyText(t *testing.T) {
	t.Parallel()

	pub, _ := testKeypair(t)
	payload, valid, signerID := VerifyMetadata("", staticResolver("demo", pub), nil)
	if payload != nil || valid || signerID != "" {
		t.Fatalf("got (%v, %v, %q), want (nil, false, \"\")", payload, valid, signerID)
	}
}

func TestExtractMetadata(t *testing.T) {
	t.Parallel()

	_, priv := testKeypair(t)
	embedded, err := EmbedMetadata("Hello World", priv, EmbedOptions{
		SignerID:     "demo",
		Timestamp:    "2024-01-01T00:00:00Z",
		ModelID:      "m1",
		GenerationID: "gen-42",
	})
	if err != nil {
		t.Fatal(err)
	}

	payload := ExtractMetadata(embedded)
	if payload == nil {
		t.Fatal("no payload extracted")
	}
	if payload.SignerID != "demo" || payload.ModelID != "m1" || payload.GenerationID != "gen-42" {
		t.Fatalf("payload=%+v", payload)
	}
}

func TestExtractMetadataNone(t *testing.T) {
	t.Parallel()

	if p := ExtractMetadata("no metadata here"); p != nil {
		t.Fatalf("payload=%+v, want nil", p)
	}
	if p := ExtractMetadata(""); p != nil {
		t.Fatalf("payload=%+v, want nil", p)
	}
	// Selector bytes that are not an envelope.
	if p := ExtractMetadata("X" + EncodeBytes([]byte("junk"))); p != nil {
		t.Fatalf("payload=%+v, want nil", p)
	}
}

func TestExtractMatchesVerifyPayload(t *testing.T) {
	t.Parallel()

	pub, priv := testKeypair(t)
	embedded, err := EmbedMetadata("Hello World", priv, EmbedOptions{
		SignerID:  "demo",
		Timestamp: "2024-01-01T00:00:00Z",
		CustomMetadata: map[string]any{
			"a": "b",
			"n": 3,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	extracted := ExtractMetadata(embedded)
	verified, valid, _ := VerifyMetadata(embedded, staticResolver("demo", pub), nil)
	if !valid {
		t.Fatal("verification failed")
	}
	if !reflect.DeepEqual(extracted, verified) {
		t.Fatalf("extract=%+v, verify=%+v", extracted, verified)
	}
}

func TestVerifyNilResolver(t *testing.T) {
	t.Parallel()

	_, priv := testKeypair(t)
	embedded, err := EmbedMetadata("Hello World", priv, EmbedOptions{
		SignerID:  "demo",
		Timestamp: "2024-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}

	payload, valid, signerID := VerifyMetadata(embedded, nil, nil)
	if payload != nil || valid || signerID != "" {
		t.Fatalf("got (%v, %v, %q), want (nil, false, \"\")", payload, valid, signerID)
	}
}
