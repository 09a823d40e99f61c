package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), uint8(x ^ y), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// noisyPNG does not compress well, so it crosses the byte threshold.
func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	r := rand.New(rand.NewPCG(1, 2))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(r.IntN(256))
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFit(t *testing.T) {
	w, h := fit(3200, 1600, 1600)
	assert.Equal(t, 1600, w)
	assert.Equal(t, 800, h)

	w, h = fit(1000, 4000, 1600)
	assert.Equal(t, 400, w)
	assert.Equal(t, 1600, h)

	w, h = fit(800, 600, 1600)
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestCompress_SmallImageUntouched(t *testing.T) {
	data := pngImage(t, 64, 64)
	out, ct, changed, err := Compress(data, DefaultCompressOptions)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, data, out)
}

func TestCompress_DownscalesOversized(t *testing.T) {
	data := pngImage(t, 2000, 1000)
	out, ct, changed, err := Compress(data, DefaultCompressOptions)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "image/jpeg", ct)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1600, cfg.Width)
	assert.Equal(t, 800, cfg.Height)
}

func TestCompress_ReencodesHeavyImage(t *testing.T) {
	data := noisyPNG(t, 400, 400)
	require.Greater(t, len(data), DefaultCompressOptions.SkipBelow)

	out, ct, changed, err := Compress(data, DefaultCompressOptions)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "image/jpeg", ct)
	assert.Less(t, len(out), len(data))
}

func TestCompress_RejectsNonImage(t *testing.T) {
	_, _, _, err := Compress([]byte("%PDF-1.7 not an image"), DefaultCompressOptions)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

// pngDeclaring returns a 1x1 PNG whose header claims w x h pixels.
func pngDeclaring(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 1, 1))))
	b := buf.Bytes()
	// IHDR data sits at [16:29] after the signature, length and type; its CRC follows.
	binary.BigEndian.PutUint32(b[16:], w)
	binary.BigEndian.PutUint32(b[20:], h)
	binary.BigEndian.PutUint32(b[29:], crc32.ChecksumIEEE(b[12:29]))
	return b
}

func TestCompress_RejectsHugeDeclaredSize(t *testing.T) {
	data := pngDeclaring(t, 20000, 20000)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 20000, cfg.Width)

	_, _, _, err = Compress(data, DefaultCompressOptions)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestCompress_TransparencyBecomesWhite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 200, 200))))

	out, ct, changed, err := Compress(buf.Bytes(), CompressOptions{MaxSide: 100, Quality: 90})
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, "image/jpeg", ct)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	r, g, b, _ := img.At(50, 50).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

type recordingUploader struct {
	name string
	data []byte
}

func (r *recordingUploader) Upload(_ context.Context, rd io.Reader, name string) (Uploaded, error) {
	b, err := io.ReadAll(rd)
	if err != nil {
		return Uploaded{}, err
	}
	r.name, r.data = name, b
	return Uploaded{URL: "https://cdn.example/" + name, PublicID: "ministry-site/" + name}, nil
}

func TestService_Upload(t *testing.T) {
	up := &recordingUploader{}
	svc := NewService(up, DefaultCompressOptions)

	res, err := svc.Upload(context.Background(), pngImage(t, 2000, 1000), "banner.png")
	require.NoError(t, err)
	assert.True(t, res.Compressed)
	assert.Equal(t, "banner.jpg", up.name)
	assert.Equal(t, len(up.data), res.Bytes)
	assert.Contains(t, res.URL, "banner.jpg")
}

func TestService_NotConfigured(t *testing.T) {
	svc := NewService(nil, DefaultCompressOptions)
	assert.False(t, svc.Configured())
	_, err := svc.Upload(context.Background(), pngImage(t, 8, 8), "x.png")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
