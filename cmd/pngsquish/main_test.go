package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/setanarut/pngsquish"
)

// createTestPNG writes a white 16x12 page with a dark stroke and a red dot.
func createTestPNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 12))
	for y := range 12 {
		for x := range 16 {
			c := color.RGBA{255, 255, 255, 255}
			switch {
			case y == 5 && x > 2 && x < 13:
				c = color.RGBA{20, 20, 30, 255}
			case x == 8 && y == 9:
				c = color.RGBA{220, 10, 10, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, "page.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodeIndexed(t *testing.T, path string) *image.Paletted {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	p, ok := img.(*image.Paletted)
	if !ok {
		t.Fatalf("decoded %T", img)
	}
	return p
}

func TestRunDefaultOutputName(t *testing.T) {
	dir := t.TempDir()
	in := createTestPNG(t, dir)
	var stderr bytes.Buffer
	if err := run([]string{"-seed", "7", "-v", in}, &stderr); err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}
	out := decodeIndexed(t, filepath.Join(dir, "page.squish.png"))
	if out.Bounds() != image.Rect(0, 0, 16, 12) {
		t.Errorf("bounds %v", out.Bounds())
	}
	if out.ColorIndexAt(0, 0) != 0 {
		t.Errorf("background index %d", out.ColorIndexAt(0, 0))
	}
	if out.ColorIndexAt(8, 9) == 0 {
		t.Errorf("red dot folded into the background")
	}
	if !strings.Contains(stderr.String(), "wrote ") {
		t.Errorf("verbose output %q", stderr.String())
	}
}

func TestRunOptions(t *testing.T) {
	dir := t.TempDir()
	in := createTestPNG(t, dir)
	out := filepath.Join(dir, "o.png")
	swatch := filepath.Join(dir, "swatch.png")
	args := []string{
		"-o", out,
		"-seed", "3",
		"-size", "8x6",
		"-quad", "0,1,1,1,1,0,0,0",
		"-thr", "30,0.2,0.2,range",
		"-thr", "0,0,0.5,compare,off",
		"-bg-after", "#ffff00",
		"-method", "kmeans",
		"-level", "1",
		"-swatch", swatch,
		in,
	}
	if err := run(args, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	p := decodeIndexed(t, out)
	if p.Bounds().Dx() != 8 || p.Bounds().Dy() != 6 {
		t.Errorf("bounds %v", p.Bounds())
	}
	if r, g, b, _ := p.Palette[0].RGBA(); r != 0xffff || g != 0xffff || b != 0 {
		t.Errorf("entry 0 %v, want yellow", p.Palette[0])
	}
	if _, err := os.Stat(swatch); err != nil {
		t.Errorf("swatch: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	in := createTestPNG(t, dir)
	for _, tc := range []struct {
		name string
		args []string
		want string
	}{
		{"missing_input", nil, "missing input"},
		{"nonexistent", []string{filepath.Join(dir, "nope.png")}, "no such file"},
		{"bad_size", []string{"-size", "8by6", in}, "WxH"},
		{"bad_quad", []string{"-quad", "0,0,1", in}, "8 comma"},
		{"concave_quad", []string{"-quad", "0,0,1,0,0.3,0.3,0,1", in}, "not convex"},
		{"bad_color", []string{"-bg-after", "yellow", in}, "color"},
		{"bad_method", []string{"-method", "median", in}, "unknown palette method"},
		{"bad_threshold", []string{"-thr", "1,2,3,fuzzy", in}, "range or compare"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := run(tc.args, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestThresholdFlag(t *testing.T) {
	var thr thresholds
	for _, s := range []string{"10,0.1,0.2,range", "0, 0, 0.3, compare, off"} {
		if err := thr.Set(s); err != nil {
			t.Fatal(err)
		}
	}
	want := []pngsquish.Threshold{
		{H: 10, S: 0.1, V: 0.2, Mode: pngsquish.ModeRange, Enabled: true},
		{H: 0, S: 0, V: 0.3, Mode: pngsquish.ModeCompare},
	}
	if len(thr) != 2 || thr[0] != want[0] || thr[1] != want[1] {
		t.Errorf("parsed %+v", thr)
	}
	if got := thr.String(); got != "10,0.1,0.2,range 0,0,0.3,compare,off" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseSize(t *testing.T) {
	w, h, err := parseSize("640X480")
	if err != nil || w != 640 || h != 480 {
		t.Errorf("parseSize = %d, %d, %v", w, h, err)
	}
	if _, _, err := parseSize("-1x5"); err == nil {
		t.Errorf("negative size accepted")
	}
}
