// Package pngenc writes 4-bit palette PNG files.
//
// Only one layout is produced: bit depth 4, color type 3, a 16 entry PLTE,
// filter type 0 on every scanline and no interlacing. The whole stream is
// assembled in memory before anything reaches the writer, so a sizing or
// compression failure never leaves a half-written chunk behind.
package pngenc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/zlib"
)

const (
	signature    = "\x89PNG\r\n\x1a\n"
	PaletteSize  = 16
	bitDepth     = 4
	colorPalette = 3
	maxDimension = math.MaxInt32
)

var (
	ErrDimensions   = errors.New("pngenc: invalid image dimensions")
	ErrAllocation   = errors.New("pngenc: image too large to buffer")
	ErrPaletteSize  = errors.New("pngenc: palette has more than 16 entries")
	ErrPaletteIndex = errors.New("pngenc: pixel index out of palette range")
)

// Encoder holds the deflate level used for IDAT.
type Encoder struct {
	// Level is a compress/flate level; zero means zlib.BestCompression.
	Level int
}

func Encode(w io.Writer, m *image.Paletted) error {
	var e Encoder
	return e.Encode(w, m)
}

// Encode writes m as PNG. Palettes shorter than 16 entries are padded with
// black.
func (e *Encoder) Encode(w io.Writer, m *image.Paletted) error {
	b, err := e.Marshal(m)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("pngenc: write: %w", err)
	}
	return nil
}

// Marshal returns the complete PNG stream for m.
func (e *Encoder) Marshal(m *image.Paletted) ([]byte, error) {
	bounds := m.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || w > maxDimension || h > maxDimension {
		return nil, ErrDimensions
	}
	if len(m.Palette) > PaletteSize {
		return nil, ErrPaletteSize
	}
	if _, ok := scanlineSize(w, h); !ok {
		return nil, ErrAllocation
	}

	lines, err := packScanlines(m)
	if err != nil {
		return nil, err
	}
	idat, err := e.compress(lines)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	// IHDR, PLTE and IEND payloads plus four chunk frames
	out.Grow(len(signature) + 13 + 3*PaletteSize + len(idat) + 4*12)
	out.WriteString(signature)

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(h))
	ihdr[8] = bitDepth
	ihdr[9] = colorPalette
	ihdr[10] = 0 // deflate
	ihdr[11] = 0 // adaptive filtering
	ihdr[12] = 0 // no interlace
	writeChunk(&out, "IHDR", ihdr[:])
	writeChunk(&out, "PLTE", plte(m.Palette))
	writeChunk(&out, "IDAT", idat)
	writeChunk(&out, "IEND", nil)
	return out.Bytes(), nil
}

// WriteFile encodes m into a new file at path. On error the file may be
// incomplete and must not be used.
func (e *Encoder) WriteFile(path string, m *image.Paletted) error {
	b, err := e.Marshal(m)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pngenc: %w", err)
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("pngenc: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("pngenc: close %s: %w", path, err)
	}
	return nil
}

// scanlineSize returns the filtered image size: one filter byte plus
// ceil(w/2) packed bytes per row.
func scanlineSize(w, h int) (int, bool) {
	stride := (w+1)/2 + 1
	if h > math.MaxInt/stride {
		return 0, false
	}
	return stride * h, true
}

// packScanlines stores two indices per byte, the first pixel in the high
// nibble. An odd final pixel leaves the low nibble zero.
func packScanlines(m *image.Paletted) ([]byte, error) {
	bounds := m.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	size, _ := scanlineSize(w, h)
	stride := (w+1)/2 + 1
	lines := make([]byte, size)
	for y := range h {
		row := m.Pix[m.PixOffset(bounds.Min.X, bounds.Min.Y+y):][:w]
		line := lines[y*stride : (y+1)*stride]
		line[0] = 0 // filter type none
		for x, idx := range row {
			if idx >= PaletteSize {
				return nil, ErrPaletteIndex
			}
			if x%2 == 0 {
				line[1+x/2] = idx << 4
			} else {
				line[1+x/2] |= idx
			}
		}
	}
	return lines, nil
}

func (e *Encoder) compress(lines []byte) ([]byte, error) {
	level := e.Level
	if level == 0 {
		level = zlib.BestCompression
	}
	var buf bytes.Buffer
	// deflate worst case expansion is 5 bytes per 16 KiB block plus the zlib frame
	buf.Grow(len(lines) + 5*(len(lines)/16384+1) + 6)
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("pngenc: %w", err)
	}
	if _, err := zw.Write(lines); err != nil {
		return nil, fmt.Errorf("pngenc: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("pngenc: compress: %w", err)
	}
	return buf.Bytes(), nil
}

func plte(p color.Palette) []byte {
	b := make([]byte, 3*PaletteSize)
	for i, c := range p {
		rgb := color.NRGBAModel.Convert(c).(color.NRGBA)
		b[3*i+0] = rgb.R
		b[3*i+1] = rgb.G
		b[3*i+2] = rgb.B
	}
	return b
}

// writeChunk frames payload as length, type, payload, CRC-32(type+payload).
func writeChunk(out *bytes.Buffer, typ string, payload []byte) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(payload)))
	out.Write(tmp[:])
	out.WriteString(typ)
	out.Write(payload)
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(payload)
	binary.BigEndian.PutUint32(tmp[:], crc.Sum32())
	out.Write(tmp[:])
}
