package domain

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const dataURIPrefix = "data:"

// Image is a decoded image payload with its detected MIME type.
type Image struct {
	MIMEType string
	Data     []byte
}

// NewImage sniffs the payload type and rejects anything that is not an image.
func NewImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return Image{}, fmt.Errorf("%w: unsupported content type %s", ErrInvalidImage, detected.String())
	}
	return Image{MIMEType: baseMIME(detected.String()), Data: data}, nil
}

// ParseDataURI decodes "data:<mime>;base64,<payload>" into an Image.
// The declared MIME type is checked against the sniffed content.
func ParseDataURI(uri string) (Image, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, dataURIPrefix) {
		return Image{}, fmt.Errorf("%w: not a data URI", ErrInvalidImage)
	}

	header, payload, ok := strings.Cut(uri[len(dataURIPrefix):], ",")
	if !ok {
		return Image{}, fmt.Errorf("%w: missing data URI payload", ErrInvalidImage)
	}
	if !strings.HasSuffix(header, ";base64") {
		return Image{}, fmt.Errorf("%w: data URI must be base64 encoded", ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: decode base64: %v", ErrInvalidImage, err)
	}

	img, err := NewImage(data)
	if err != nil {
		return Image{}, err
	}

	declared := baseMIME(strings.TrimSuffix(header, ";base64"))
	if declared != "" && !strings.HasPrefix(declared, "image/") {
		return Image{}, fmt.Errorf("%w: declared type %s", ErrInvalidImage, declared)
	}
	return img, nil
}

// DataURI renders the image as a base64 data URI.
func (i Image) DataURI() string {
	return dataURIPrefix + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Extension returns the file extension for the image type, including the dot.
func (i Image) Extension() string {
	if m := mimetype.Lookup(i.MIMEType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".img"
}

func baseMIME(value string) string {
	value, _, _ = strings.Cut(value, ";")
	return strings.ToLower(strings.TrimSpace(value))
}
