package utils

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ReadImage decodes a JPEG, PNG, GIF, BMP or WebP file.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// PreviewSize scales size so that an uncompressed preview takes roughly kb
// kilobytes, assuming 0.02 KB per pixel. It only ever shrinks.
func PreviewSize(size image.Point, kb float64) image.Point {
	if size.X <= 0 || size.Y <= 0 || kb <= 0 {
		return size
	}
	scale := math.Sqrt(kb / (0.02 * float64(size.X) * float64(size.Y)))
	if scale >= 1 {
		return size
	}
	return image.Point{
		X: max(1, int(float64(size.X)*scale)),
		Y: max(1, int(float64(size.Y)*scale)),
	}
}

// Resize scales img to size. Downscales use Catmull-Rom, upscales bilinear.
func Resize(img image.Image, size image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	src := img.Bounds()
	var scaler draw.Scaler = draw.CatmullRom
	if size.X > src.Dx() || size.Y > src.Dy() {
		scaler = draw.BiLinear
	}
	scaler.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}
