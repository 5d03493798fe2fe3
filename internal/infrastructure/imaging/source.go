package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/captchakit/captcha-recognizer/internal/core/domain/apperr"
	"github.com/captchakit/captcha-recognizer/internal/core/ports"
)

// bytesSource wraps a raw payload.
type bytesSource struct {
	data     []byte
	validate bool
}

// FromBytes builds an image source over raw bytes, validating that the
// payload decodes as png, jpeg or gif before it reaches the recognizer.
func FromBytes(data []byte) ports.ImageSource {
	return &bytesSource{data: data, validate: true}
}

// FromRawBytes skips decode validation, for callers that already validated
// or preprocessed the payload.
func FromRawBytes(data []byte) ports.ImageSource {
	return &bytesSource{data: data}
}

func (s *bytesSource) Bytes() ([]byte, error) {
	if len(s.data) == 0 {
		return nil, apperr.InvalidImageData("empty image payload", nil)
	}
	if s.validate {
		if _, _, err := image.DecodeConfig(bytes.NewReader(s.data)); err != nil {
			return nil, apperr.InvalidImage("undecodable image payload", err)
		}
	}
	return s.data, nil
}

// fileSource reads the payload from disk on demand.
type fileSource struct {
	path string
}

// FromFile builds an image source over a file path. Missing or unreadable
// files surface as filesystem taxonomy errors.
func FromFile(path string) ports.ImageSource {
	return &fileSource{path: path}
}

func (s *fileSource) Bytes() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, apperr.FileSystem(fmt.Sprintf("cannot read image file %s", s.path), err).
			WithDetail("path", s.path)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, apperr.InvalidImage(fmt.Sprintf("file %s is not a supported image", s.path), err)
	}
	return data, nil
}

// imageSource PNG-encodes an already decoded image.
type imageSource struct {
	img image.Image
}

// FromImage builds an image source over an in-memory decoded image.
func FromImage(img image.Image) ports.ImageSource {
	return &imageSource{img: img}
}

func (s *imageSource) Bytes() ([]byte, error) {
	if s.img == nil {
		return nil, apperr.InvalidImageData("nil image handle", nil)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return nil, apperr.InvalidImage("encode image", err)
	}
	return buf.Bytes(), nil
}
