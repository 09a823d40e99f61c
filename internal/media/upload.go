package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"

	"github.com/yourusername/ministry-site/internal/logging"
)

var ErrNotConfigured = errors.New("image hosting not configured")

// Uploaded describes an image stored on the CDN.
type Uploaded struct {
	URL        string `json:"url"`
	PublicID   string `json:"publicId"`
	Bytes      int    `json:"bytes"`
	Compressed bool   `json:"compressed"`
}

// Uploader stores a file on the image CDN.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, name string) (Uploaded, error)
}

// Cloudinary uploads into one folder of a Cloudinary account.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("error creating cloudinary client: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, name string) (Uploaded, error) {
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   c.folder,
		PublicID: strings.TrimSuffix(path.Base(name), path.Ext(name)),
	})
	if err != nil {
		return Uploaded{}, fmt.Errorf("error uploading image: %w", err)
	}
	if res.Error.Message != "" {
		return Uploaded{}, fmt.Errorf("error uploading image: %s", res.Error.Message)
	}
	return Uploaded{URL: res.SecureURL, PublicID: res.PublicID, Bytes: res.Bytes}, nil
}

// Service compresses images and forwards them to the CDN.
type Service struct {
	uploader Uploader
	opts     CompressOptions
	log      zerolog.Logger
}

// NewService accepts a nil uploader; every upload then fails with
// ErrNotConfigured.
func NewService(u Uploader, opts CompressOptions) *Service {
	return &Service{uploader: u, opts: opts, log: logging.For("media")}
}

func (s *Service) Configured() bool {
	return s.uploader != nil
}

func (s *Service) Upload(ctx context.Context, data []byte, name string) (Uploaded, error) {
	if s.uploader == nil {
		return Uploaded{}, ErrNotConfigured
	}

	out, contentType, changed, err := Compress(data, s.opts)
	if err != nil {
		return Uploaded{}, err
	}
	if changed {
		name = strings.TrimSuffix(name, path.Ext(name)) + ".jpg"
		s.log.Debug().Str("file", name).Int("before", len(data)).Int("after", len(out)).Msg("Image compressed")
	}

	res, err := s.uploader.Upload(ctx, bytes.NewReader(out), name)
	if err != nil {
		return Uploaded{}, err
	}
	res.Compressed = changed
	if res.Bytes == 0 {
		res.Bytes = len(out)
	}
	s.log.Info().Str("publicId", res.PublicID).Str("type", contentType).Msg("Image uploaded")
	return res, nil
}
