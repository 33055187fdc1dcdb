package pkg

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeDataURL encodes raw bytes into a base64 data URL, the embeddable
// representation used for images stored inline in the local tracker file.
func EncodeDataURL(contentType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURL is the inverse of EncodeDataURL.
func DecodeDataURL(dataURL string) (contentType string, data []byte, err error) {
	const scheme = "data:"
	if !strings.HasPrefix(dataURL, scheme) {
		return "", nil, fmt.Errorf("invalid data URL: missing %q prefix", scheme)
	}
	meta, payload, found := strings.Cut(dataURL[len(scheme):], ",")
	if !found {
		return "", nil, fmt.Errorf("invalid data URL: no payload")
	}
	contentType = strings.TrimSuffix(meta, ";base64")
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL payload: %w", err)
	}
	return contentType, data, nil
}
