package ocr

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
)

// ContrastFactor is applied to the grayscale screenshot before recognition.
const ContrastFactor = 2.0

// Enhance converts img to grayscale and stretches its contrast around the
// mean luminance.
func Enhance(img image.Image, factor float64) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(b)
	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			gray.SetGray(x, y, c)
			sum += float64(c.Y)
		}
	}
	n := float64(b.Dx() * b.Dy())
	if n == 0 {
		return gray
	}
	mean := sum / n

	for i, v := range gray.Pix {
		out := mean + (float64(v)-mean)*factor
		switch {
		case out < 0:
			out = 0
		case out > 255:
			out = 255
		}
		gray.Pix[i] = uint8(out + 0.5)
	}
	return gray
}

// prepare decodes the screenshot, enhances it and writes a temporary PNG.
// The caller removes the returned file.
func prepare(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open screenshot: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode screenshot: %w", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return "", fmt.Errorf("empty screenshot %s", path)
	}

	out, err := os.CreateTemp("", "saydo-ocr-*.png")
	if err != nil {
		return "", err
	}
	defer out.Close()
	if err := png.Encode(out, Enhance(img, ContrastFactor)); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("encode screenshot: %w", err)
	}
	return out.Name(), nil
}
