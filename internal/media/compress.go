package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedImage = errors.New("unsupported image")

// maxPixels caps the declared size of an image before it is decoded.
const maxPixels = 50_000_000

// CompressOptions bounds what is sent to the CDN.
type CompressOptions struct {
	MaxSide   int
	Quality   int
	SkipBelow int
}

var DefaultCompressOptions = CompressOptions{
	MaxSide:   1600,
	Quality:   80,
	SkipBelow: 300 * 1024,
}

// Compress downsizes data so its longest side is at most MaxSide and
// re-encodes it as JPEG. Images already small in bytes and dimensions are
// returned untouched with changed=false.
func Compress(data []byte, opts CompressOptions) (out []byte, contentType string, changed bool, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", false, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, "", false, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupportedImage, cfg.Width, cfg.Height, maxPixels)
	}
	if len(data) < opts.SkipBelow && cfg.Width <= opts.MaxSide && cfg.Height <= opts.MaxSide {
		return data, "image/" + format, false, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", false, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	// JPEG has no alpha, so transparent areas are flattened onto white.
	w, h := fit(cfg.Width, cfg.Height, opts.MaxSide)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if w != cfg.Width || h != cfg.Height {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	} else {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, "", false, fmt.Errorf("error encoding jpeg: %w", err)
	}
	// Re-encoding a small, already compressed JPEG can make it larger.
	if buf.Len() >= len(data) && w == cfg.Width && h == cfg.Height {
		return data, "image/" + format, false, nil
	}
	return buf.Bytes(), "image/jpeg", true, nil
}

// fit scales (w, h) down proportionally so neither side exceeds maxSide.
func fit(w, h, maxSide int) (int, int) {
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return w, h
	}
	if w >= h {
		return maxSide, max(1, h*maxSide/w)
	}
	return max(1, w*maxSide/h), maxSide
}
