package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"

	xdraw "golang.org/x/image/draw"

	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
)

// Preprocessing option keys, consumed from the request options map.
const (
	OptGrayscale = "grayscale"
	OptContrast  = "contrast"
	OptSharpen   = "sharpen"
	OptDenoise   = "denoise"
	OptThreshold = "threshold"
	OptScale     = "scale"
)

// Preprocessor applies optional enhancement filters to challenge images
// before they are handed to the OCR engine. Filters run in a fixed order:
// scale, grayscale, denoise, contrast, sharpen, threshold. Output is always
// PNG so preprocessing is deterministic for cache-key purposes.
type Preprocessor struct{}

func NewPreprocessor() *Preprocessor { return &Preprocessor{} }

// Preprocess implements ports.Preprocessor.
func (p *Preprocessor) Preprocess(data []byte, opts captcha.Options) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if scale := opts.Float(OptScale, 1.0); scale > 0 && scale != 1.0 {
		img = resize(img, scale)
	}
	if opts.Bool(OptGrayscale, false) {
		img = grayscale(img)
	}
	if opts.Bool(OptDenoise, false) {
		img = medianFilter(img)
	}
	if factor := opts.Float(OptContrast, 1.0); factor != 1.0 {
		img = adjustContrast(img, factor)
	}
	if opts.Bool(OptSharpen, false) {
		img = sharpen(img)
	}
	if t := opts.Float(OptThreshold, -1); t >= 0 && t <= 255 {
		img = threshold(img, uint8(t))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}

func resize(img image.Image, scale float64) image.Image {
	b := img.Bounds()
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

func grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(b)
	xdraw.Draw(dst, b, img, b.Min, xdraw.Src)
	return dst
}

// adjustContrast scales each channel away from the midpoint by factor.
func adjustContrast(img image.Image, factor float64) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			dst.Set(x, y, color.RGBA{
				R: contrastChannel(r, factor),
				G: contrastChannel(g, factor),
				B: contrastChannel(bl, factor),
				A: uint8(a >> 8),
			})
		}
	}
	return dst
}

func contrastChannel(v uint32, factor float64) uint8 {
	c := float64(v>>8) - 128
	c = c*factor + 128
	return clamp(c)
}

// sharpen applies a 3x3 sharpening convolution on the luminance plane.
func sharpen(img image.Image) image.Image {
	src := grayscale(img)
	b := src.Bounds()
	dst := image.NewGray(b)
	kernel := [3][3]float64{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var sum float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					px, py := clampCoord(x+kx, b.Min.X, b.Max.X-1), clampCoord(y+ky, b.Min.Y, b.Max.Y-1)
					sum += float64(src.GrayAt(px, py).Y) * kernel[ky+1][kx+1]
				}
			}
			dst.SetGray(x, y, color.Gray{Y: clamp(sum)})
		}
	}
	return dst
}

// medianFilter removes salt-and-pepper noise with a 3x3 median window.
func medianFilter(img image.Image) image.Image {
	src := grayscale(img)
	b := src.Bounds()
	dst := image.NewGray(b)
	window := make([]int, 0, 9)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			window = window[:0]
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					px, py := clampCoord(x+kx, b.Min.X, b.Max.X-1), clampCoord(y+ky, b.Min.Y, b.Max.Y-1)
					window = append(window, int(src.GrayAt(px, py).Y))
				}
			}
			sort.Ints(window)
			dst.SetGray(x, y, color.Gray{Y: uint8(window[4])})
		}
	}
	return dst
}

// threshold binarizes the luminance plane at the given cutoff.
func threshold(img image.Image, cutoff uint8) image.Image {
	src := grayscale(img)
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := uint8(0)
			if src.GrayAt(x, y).Y >= cutoff {
				v = 255
			}
			dst.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return dst
}

func clamp(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampCoord(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
