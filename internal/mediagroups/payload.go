package mediagroups

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const maxPayloadBytes = 50 * 1024 * 1024

// decodePayload turns a data-URL-style base64 string into raw bytes plus the
// content type detected from the bytes themselves. A bare base64 string
// without the data-URL prefix is accepted too.
func decodePayload(data string) ([]byte, string, error) {
	encoded := strings.TrimSpace(data)
	if encoded == "" {
		return nil, "", fmt.Errorf("payload is empty")
	}

	if strings.HasPrefix(encoded, "data:") {
		comma := strings.IndexByte(encoded, ',')
		if comma < 0 {
			return nil, "", fmt.Errorf("data url missing payload separator")
		}
		meta := encoded[len("data:"):comma]
		if !strings.HasSuffix(meta, ";base64") {
			return nil, "", fmt.Errorf("data url must be base64 encoded")
		}
		encoded = encoded[comma+1:]
	}

	if base64.StdEncoding.DecodedLen(len(encoded)) > maxPayloadBytes {
		return nil, "", fmt.Errorf("payload exceeds %d bytes", maxPayloadBytes)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(encoded)
	}
	if err != nil {
		return nil, "", fmt.Errorf("decode base64 payload: %w", err)
	}
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("payload decoded to zero bytes")
	}

	detected := mimetype.Detect(raw)
	return raw, detected.String(), nil
}
