package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"strings"

	// Standard raster formats used by browser captures
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	// Extra formats some capture clients emit
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DecodeDataURL decodes an encoded frame string into an RGB frame. The input
// may carry a data-URL header ("<mime>;base64,<payload>"); only the payload
// after the first comma is decoded.
func DecodeDataURL(encoded string) (*Frame, error) {
	payload := encoded
	if idx := strings.Index(payload, ","); idx >= 0 {
		payload = payload[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Browsers occasionally emit unpadded base64
		raw, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, &DecodeError{Reason: "invalid base64 payload", Err: err}
		}
	}

	if len(raw) == 0 {
		return nil, &DecodeError{Reason: "empty payload"}
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Reason: "unrecognized image data", Err: err}
	}

	return FromImage(img), nil
}
