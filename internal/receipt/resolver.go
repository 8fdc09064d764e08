// internal/receipt/resolver.go
package receipt

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
)

// ResolveImage is the default image resolver. It understands base64 data
// URIs and local file paths, the two forms clients actually send.
func ResolveImage(ref string) (image.Image, error) {
	if strings.HasPrefix(ref, "data:") {
		return decodeDataURI(ref)
	}

	f, err := os.Open(ref)
	if err != nil {
		return nil, fmt.Errorf("open image file: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image file %s: %w", ref, err)
	}
	return img, nil
}

func decodeDataURI(ref string) (image.Image, error) {
	_, payload, ok := strings.Cut(ref, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode embedded image: %w", err)
	}
	return img, nil
}
