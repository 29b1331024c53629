package recipe

import (
	"encoding/base64"
	"strings"
)

const maxPhotoBytes = 5 << 20

// DecodePhoto strips an optional data URL prefix ("data:image/png;base64,")
// and decodes the remaining base64 payload.
func DecodePhoto(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if i := strings.Index(data, ","); strings.HasPrefix(data, "data:") && i >= 0 {
		data = data[i+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil || len(raw) == 0 {
		return nil, &ValidationError{Message: "Photo must be valid base64 image data"}
	}
	if len(raw) > maxPhotoBytes {
		return nil, &ValidationError{Message: "Photo must be at most 5 MB"}
	}
	return raw, nil
}
