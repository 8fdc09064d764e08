package transport

import (
	"bytes"
	"testing"
)

func TestWithCutTrailer(t *testing.T) {
	stream := []byte{0x1B, 0x40, 'h', 'i'}

	out := WithCutTrailer(stream)

	want := append(append([]byte(nil), stream...), 0x1D, 0x56, 0x00)
	if !bytes.Equal(out, want) {
		t.Errorf("Expected % X, got % X", want, out)
	}
}

func TestWithCutTrailer_DoesNotMutateInput(t *testing.T) {
	stream := make([]byte, 2, 16)
	stream[0], stream[1] = 0x01, 0x02
	original := append([]byte(nil), stream...)

	WithCutTrailer(stream)

	if !bytes.Equal(stream, original) {
		t.Error("Appending the trailer must not mutate the caller's stream")
	}
}

func TestWithCutTrailer_EmptyStream(t *testing.T) {
	out := WithCutTrailer(nil)
	if !bytes.Equal(out, CutTrailer) {
		t.Errorf("Empty stream should still end in a cut, got % X", out)
	}
}

func TestFlatten(t *testing.T) {
	chunks := [][]byte{{0x01}, {0x02, 0x03}, nil, {0x04}}

	out := Flatten(chunks)

	want := []byte{0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(out, want) {
		t.Errorf("Expected % X, got % X", want, out)
	}
}
