package vsmark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/gowebpki/jcs"
)

// jumbfPrefix tags a JUMBF-wrapped envelope: the ASCII bytes "JUMBF"
// followed by the compact JSON form.
var jumbfPrefix = []byte("JUMBF")

// CBOR modes. Encoding is canonical so the same envelope always yields
// the same bytes; decoding forces string-keyed maps so decoded payloads
// can be re-encoded as JSON.
var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// canonicalJSON returns the RFC 8785 canonical form of raw JSON bytes.
// This is the byte sequence signatures are computed over: lexicographic
// key order and ES6 number formatting make it stable across producers,
// so a transport that reorders keys cannot break verification.
func canonicalJSON(raw []byte) ([]byte, error) {
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}
	return out, nil
}

// canonicalPayloadBytes serializes p and canonicalizes the result: the
// same marshal-then-canonicalize steps buildEnvelopeBytes applies before
// signing. The verifier canonicalizes the payload bytes as they arrived.
func canonicalPayloadBytes(p *Payload) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return canonicalJSON(raw)
}

// serializeEnvelope encodes the outer envelope for transport.
func serializeEnvelope(env *envelope, format SerializationFormat) ([]byte, error) {
	switch format {
	case SerializationJSON:
		return json.Marshal(env)
	case SerializationJUMBF:
		raw, err := json.Marshal(env)
		if err != nil {
			return nil, err
		}
		return append(append([]byte{}, jumbfPrefix...), raw...), nil
	case SerializationCBOR:
		return serializeEnvelopeCBOR(env)
	}
	return nil, fmt.Errorf("unsupported serialization format %q", format)
}

func serializeEnvelopeCBOR(env *envelope) ([]byte, error) {
	// The raw JSON payload becomes a structured CBOR map so the whole
	// envelope is a single major-type-5 map.
	var payload any
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode payload for cbor: %w", err)
	}
	return cborEnc.Marshal(map[string]any{
		"payload":   payload,
		"signature": env.Signature,
		"signer_id": env.SignerID,
		"format":    env.Format,
	})
}

// deserializeEnvelope decodes transport bytes, sniffing the format:
// a JUMBF prefix wins, then JSON, then CBOR. Any error means the bytes
// carry no recognizable envelope.
func deserializeEnvelope(data []byte) (*envelope, error) {
	if bytes.HasPrefix(data, jumbfPrefix) {
		return decodeEnvelopeJSON(data[len(jumbfPrefix):])
	}
	if env, err := decodeEnvelopeJSON(data); err == nil {
		return env, nil
	}
	return decodeEnvelopeCBOR(data)
}

func decodeEnvelopeJSON(data []byte) (*envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return envelopeFromRawJSON(fields)
}

func decodeEnvelopeCBOR(data []byte) (*envelope, error) {
	var fields map[string]cbor.RawMessage
	if err := cborDec.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	jsonFields := make(map[string]json.RawMessage, len(fields))
	for k, raw := range fields {
		var v any
		if err := cborDec.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		j, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("re-encode cbor field %q: %w", k, err)
		}
		jsonFields[k] = j
	}
	return envelopeFromRawJSON(jsonFields)
}

func envelopeFromRawJSON(fields map[string]json.RawMessage) (*envelope, error) {
	for _, k := range envelopeKeys {
		if _, ok := fields[k]; !ok {
			return nil, fmt.Errorf("envelope missing key %q", k)
		}
	}
	env := &envelope{Payload: fields["payload"]}
	if err := json.Unmarshal(fields["signature"], &env.Signature); err != nil {
		return nil, fmt.Errorf("envelope signature: %w", err)
	}
	if err := json.Unmarshal(fields["signer_id"], &env.SignerID); err != nil {
		return nil, fmt.Errorf("envelope signer_id: %w", err)
	}
	if err := json.Unmarshal(fields["format"], &env.Format); err != nil {
		return nil, fmt.Errorf("envelope format: %w", err)
	}
	return env, nil
}
