package vsmark

import (
	"bytes"
	"testing"
)

func TestSelectorByteRoundtrip(t *testing.T) {
	t.Parallel()

	for i := 0; i < 256; i++ {
		b := byte(i)
		r := byteToSelector(b)
		got, ok := selectorToByte(r)
		if !ok {
			t.Fatalf("selectorToByte(%U) not recognized", r)
		}
		if got != b {
			t.Fatalf("roundtrip byte %d via %U gave %d", b, r, got)
		}
	}
}

func TestSelectorRanges(t *testing.T) {
	t.Parallel()

	// Bytes 0-15 land in the base block, 16-255 in the supplement.
	if r := byteToSelector(0); r != 0xFE00 {
		t.Fatalf("byteToSelector(0)=%U, want U+FE00", r)
	}
	if r := byteToSelector(15); r != 0xFE0F {
		t.Fatalf("byteToSelector(15)=%U, want U+FE0F", r)
	}
	if r := byteToSelector(16); r != 0xE0100 {
		t.Fatalf("byteToSelector(16)=%U, want U+E0100", r)
	}
	if r := byteToSelector(255); r != 0xE01EF {
		t.Fatalf("byteToSelector(255)=%U, want U+E01EF", r)
	}
}

func TestSelectorToByteRejectsOtherRunes(t *testing.T) {
	t.Parallel()

	for _, r := range []rune{'a', ' ', 0xFDFF, 0xFE10, 0xE00FF, 0xE01F0, 0x1F600} {
		if b, ok := selectorToByte(r); ok {
			t.Fatalf("selectorToByte(%U) unexpectedly mapped to %d", r, b)
		}
	}
}

func TestEncodeDecodeBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"single", []byte{0x00}},
		{"boundary", []byte{0x0F, 0x10, 0xFF}},
		{"ascii", []byte("hello world")},
		{"all values", allBytes()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// An anchor precedes the run, as in embedded text.
			carrier := "X" + EncodeBytes(tc.data)
			got := DecodeBytes(carrier)
			if !bytes.Equal(got, tc.data) {
				t.Fatalf("decode gave %v, want %v", got, tc.data)
			}
		})
	}
}

func allBytes() []byte {
	out := make([]byte, 256)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

func TestDecodeBytesStopsAtFirstNonSelector(t *testing.T) {
	t.Parallel()

	first := []byte{1, 2, 3}
	second := []byte{4, 5}
	text := "A" + EncodeBytes(first) + "B" + EncodeBytes(second)

	got := DecodeBytes(text)
	if !bytes.Equal(got, first) {
		t.Fatalf("decode gave %v, want only first run %v", got, first)
	}
}

func TestDecodeBytesSkipsLeadingCarrierText(t *testing.T) {
	t.Parallel()

	data := []byte("payload")
	text := "plain text before " + EncodeBytes(data) + " after"
	if got := DecodeBytes(text); !bytes.Equal(got, data) {
		t.Fatalf("decode gave %q, want %q", got, data)
	}
}

func TestDecodeBytesNoSelectors(t *testing.T) {
	t.Parallel()

	if got := DecodeBytes("no selectors here"); got != nil {
		t.Fatalf("decode gave %v, want nil", got)
	}
}

func TestEncodeDecodeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"ascii", "hello"},
		{"unicode", "héllo wörld — 你好"},
		{"empty", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			encoded := EncodeText("😊", tc.text)
			if got := DecodeText(encoded); got != tc.text {
				t.Fatalf("DecodeText=%q, want %q", got, tc.text)
			}
		})
	}
}

func TestStripSelectors(t *testing.T) {
	t.Parallel()

	original := "Hello World"
	embedded := "Hello" + EncodeBytes([]byte{9, 200}) + " World"
	if got := StripSelectors(embedded); got != original {
		t.Fatalf("StripSelectors=%q, want %q", got, original)
	}
}
