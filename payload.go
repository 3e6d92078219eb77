package vsmark

import "encoding/json"

// MetadataFormat selects the inner payload shape.
type MetadataFormat string

const (
	// FormatBasic is a flat record: signer, timestamp, model and
	// generation identifiers, plus free-form custom metadata.
	FormatBasic MetadataFormat = "basic"
	// FormatManifest nests provenance claims under a manifest mapping.
	FormatManifest MetadataFormat = "manifest"
)

func (f MetadataFormat) valid() bool {
	return f == FormatBasic || f == FormatManifest
}

// SerializationFormat selects how the outer envelope travels inside the
// selector run. Signing always happens over canonical JSON of the inner
// payload, independent of the transport choice.
type SerializationFormat string

const (
	SerializationJSON  SerializationFormat = "json"
	SerializationCBOR  SerializationFormat = "cbor"
	SerializationJUMBF SerializationFormat = "jumbf"
)

func (f SerializationFormat) valid() bool {
	switch f {
	case SerializationJSON, SerializationCBOR, SerializationJUMBF:
		return true
	}
	return false
}

// Manifest carries the structured claims of a manifest-format payload.
type Manifest struct {
	ClaimGenerator string           `json:"claim_generator,omitempty" cbor:"claim_generator,omitempty"`
	Actions        []map[string]any `json:"actions,omitempty" cbor:"actions,omitempty"`
	AIInfo         map[string]any   `json:"ai_info,omitempty" cbor:"ai_info,omitempty"`
	CustomClaims   map[string]any   `json:"custom_claims,omitempty" cbor:"custom_claims,omitempty"`
}

// Payload is the signed inner record. Format discriminates which of the
// optional fields are meaningful: ModelID, GenerationID and
// CustomMetadata belong to basic payloads, Manifest to manifest ones.
type Payload struct {
	SignerID       string          `json:"signer_id" cbor:"signer_id"`
	Timestamp      string          `json:"timestamp" cbor:"timestamp"`
	Format         MetadataFormat  `json:"format" cbor:"format"`
	ModelID        string          `json:"model_id,omitempty" cbor:"model_id,omitempty"`
	GenerationID   string          `json:"generationID,omitempty" cbor:"generationID,omitempty"`
	CustomMetadata map[string]any  `json:"custom_metadata,omitempty" cbor:"custom_metadata,omitempty"`
	Manifest       *Manifest       `json:"manifest,omitempty" cbor:"manifest,omitempty"`
}

// standardBasicKeys are reserved field names of the basic payload.
// Custom metadata entries under these names are dropped rather than
// allowed to shadow the signed standard fields.
var standardBasicKeys = map[string]struct{}{
	"signer_id":    {},
	"timestamp":    {},
	"format":       {},
	"model_id":     {},
	"generationID": {},
}

// filterCustomMetadata returns custom with reserved keys removed. The
// input map is never mutated. Returns nil when nothing survives.
func filterCustomMetadata(custom map[string]any) map[string]any {
	if len(custom) == 0 {
		return nil
	}
	out := make(map[string]any, len(custom))
	dropped := 0
	for k, v := range custom {
		if _, reserved := standardBasicKeys[k]; reserved {
			dropped++
			continue
		}
		out[k] = v
	}
	if dropped > 0 {
		logger.Warn().Int("dropped", dropped).Msg("custom metadata keys overlap standard keys")
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// envelopeKeys are the required top-level keys of the outer envelope.
var envelopeKeys = [...]string{"payload", "signature", "signer_id", "format"}

// envelope is the outer signed container. Payload is kept as raw JSON so
// the exact bytes that arrived can be re-canonicalized for verification;
// SignerID and Format duplicate the payload's fields for key lookup
// without parsing it.
type envelope struct {
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
	SignerID  string          `json:"signer_id"`
	Format    string          `json:"format"`
}

// parsePayload decodes the envelope's raw payload into a Payload.
func (e *envelope) parsePayload() (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
