package vsmark

import (
	"reflect"
	"testing"
)

func TestFilterCustomMetadataDropsReservedKeys(t *testing.T) {
	t.Parallel()

	custom := map[string]any{
		"signer_id": "evil",
		"timestamp": "1970-01-01T00:00:00Z",
		"source":    "unit-test",
		"score":     0.92,
	}
	got := filterCustomMetadata(custom)
	want := map[string]any{"source": "unit-test", "score": 0.92}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filtered=%v, want %v", got, want)
	}

	// The caller's map is untouched.
	if len(custom) != 4 {
		t.Fatalf("input map was mutated: %v", custom)
	}
}

func TestFilterCustomMetadataAllReserved(t *testing.T) {
	t.Parallel()

	got := filterCustomMetadata(map[string]any{"format": "basic", "model_id": "x"})
	if got != nil {
		t.Fatalf("filtered=%v, want nil", got)
	}
}

func TestFilterCustomMetadataEmpty(t *testing.T) {
	t.Parallel()

	if got := filterCustomMetadata(nil); got != nil {
		t.Fatalf("filtered=%v, want nil", got)
	}
}

func TestBuildPayloadBasic(t *testing.T) {
	t.Parallel()

	p, err := buildPayload(&EmbedOptions{
		SignerID:     "demo",
		Timestamp:    "2024-01-01T00:00:00Z",
		ModelID:      "m1",
		GenerationID: "gen-1",
		CustomMetadata: map[string]any{
			"timestamp": "shadow",
			"topic":     "testing",
		},
	})
	if err != nil {
		t.Fatalf("buildPayload: %v", err)
	}
	if p.Format != FormatBasic {
		t.Fatalf("format=%q, want basic", p.Format)
	}
	if p.ModelID != "m1" || p.GenerationID != "gen-1" {
		t.Fatalf("identifiers not carried: %+v", p)
	}
	if _, ok := p.CustomMetadata["timestamp"]; ok {
		t.Fatal("reserved key survived filtering")
	}
	if p.CustomMetadata["topic"] != "testing" {
		t.Fatalf("custom metadata lost: %v", p.CustomMetadata)
	}
	if p.Manifest != nil {
		t.Fatal("basic payload has a manifest")
	}
}

func TestBuildPayloadManifestMergesModelID(t *testing.T) {
	t.Parallel()

	aiInfo := map[string]any{"temperature": 0.7}
	p, err := buildPayload(&EmbedOptions{
		SignerID:       "demo",
		Timestamp:      "2024-01-01T00:00:00Z",
		MetadataFormat: FormatManifest,
		ModelID:        "m1",
		ClaimGenerator: "vsmark/1.0",
		Actions:        []map[string]any{{"action": "created"}},
		AIInfo:         aiInfo,
		CustomClaims:   map[string]any{"review": "pending"},
	})
	if err != nil {
		t.Fatalf("buildPayload: %v", err)
	}
	if p.Manifest == nil {
		t.Fatal("manifest payload has no manifest")
	}
	if p.Manifest.AIInfo["model_id"] != "m1" {
		t.Fatalf("model_id not merged into ai_info: %v", p.Manifest.AIInfo)
	}
	if p.Manifest.AIInfo["temperature"] != 0.7 {
		t.Fatalf("ai_info fields lost: %v", p.Manifest.AIInfo)
	}
	// The caller's ai_info map is untouched.
	if _, ok := aiInfo["model_id"]; ok {
		t.Fatal("caller's ai_info map was mutated")
	}
	if p.ModelID != "" {
		t.Fatal("manifest payload carries a top-level model_id")
	}
}

func TestBuildPayloadManifestModelIDOnly(t *testing.T) {
	t.Parallel()

	p, err := buildPayload(&EmbedOptions{
		SignerID:       "demo",
		Timestamp:      "2024-01-01T00:00:00Z",
		MetadataFormat: FormatManifest,
		ModelID:        "m1",
	})
	if err != nil {
		t.Fatalf("buildPayload: %v", err)
	}
	if p.Manifest.AIInfo["model_id"] != "m1" {
		t.Fatalf("ai_info=%v, want model_id m1", p.Manifest.AIInfo)
	}
}
