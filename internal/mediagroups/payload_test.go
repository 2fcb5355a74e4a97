package mediagroups

import (
	"encoding/base64"
	"strings"
	"testing"
)

const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func TestDecodePayloadDataURL(t *testing.T) {
	t.Parallel()

	raw, contentType, err := decodePayload("data:image/png;base64," + tinyPNG)
	if err != nil {
		t.Fatalf("decodePayload: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("expected decoded bytes")
	}
	if contentType != "image/png" {
		t.Fatalf("expected sniffed image/png, got %q", contentType)
	}
}

func TestDecodePayloadBareBase64(t *testing.T) {
	t.Parallel()

	raw, contentType, err := decodePayload(tinyPNG)
	if err != nil {
		t.Fatalf("decodePayload: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("expected decoded bytes")
	}
	if contentType != "image/png" {
		t.Fatalf("expected sniffed image/png, got %q", contentType)
	}
}

func TestDecodePayloadSniffsActualContent(t *testing.T) {
	t.Parallel()

	// Declared as webp in the data URL, but the bytes are a PNG.
	_, contentType, err := decodePayload("data:image/webp;base64," + tinyPNG)
	if err != nil {
		t.Fatalf("decodePayload: %v", err)
	}
	if contentType != "image/png" {
		t.Fatalf("expected content sniffing to win, got %q", contentType)
	}
}

func TestDecodePayloadRejectsBadInput(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":             "",
		"whitespace":        "   ",
		"no separator":      "data:image/png;base64" + tinyPNG,
		"not base64 marked": "data:image/png," + tinyPNG,
		"invalid base64":    "data:image/png;base64,@@not-base64@@",
		"zero bytes":        "data:image/png;base64,",
	}
	for name, input := range cases {
		input := input
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, _, err := decodePayload(input); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDecodePayloadRawEncodingFallback(t *testing.T) {
	t.Parallel()

	unpadded := strings.TrimRight(tinyPNG, "=")
	raw, _, err := decodePayload(unpadded)
	if err != nil {
		t.Fatalf("decodePayload: %v", err)
	}
	want, _ := base64.StdEncoding.DecodeString(tinyPNG)
	if len(raw) != len(want) {
		t.Fatalf("expected %d bytes, got %d", len(want), len(raw))
	}
}
