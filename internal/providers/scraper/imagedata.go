package scraper

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostGen/backend/internal/providers/http/client"
)

const (
	DefaultMaxImageBytes = 8 * 1024 * 1024
	DefaultMaxImageWidth = 1080
	jpegQuality          = 85
)

var (
	ErrNotImage      = errors.New("not a raster image")
	ErrImageTooLarge = errors.New("image exceeds size limit")
	ErrNoImage       = errors.New("no usable image")
)

// ImageFetcher downloads images and returns them as data URIs.
type ImageFetcher struct {
	client   *client.Client
	maxBytes int64
	maxWidth int
	logger   *zap.Logger
}

// ImageOptions tunes an ImageFetcher. Zero values take the defaults;
// a negative MaxWidth disables resizing.
type ImageOptions struct {
	MaxBytes int64
	MaxWidth int
}

// NewImageFetcher creates an image downloader on top of an upstream client.
func NewImageFetcher(c *client.Client, opts ImageOptions, logger *zap.Logger) *ImageFetcher {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxImageBytes
	}
	if opts.MaxWidth == 0 {
		opts.MaxWidth = DefaultMaxImageWidth
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageFetcher{client: c, maxBytes: opts.MaxBytes, maxWidth: opts.MaxWidth, logger: logger}
}

// FetchDataURI downloads one image, downsizes it if needed and encodes it
// as a base64 data URI.
func (f *ImageFetcher) FetchDataURI(ctx context.Context, imageURL string) (string, error) {
	resp, err := f.client.Do(ctx, func() (*resty.Response, error) {
		return f.client.Request(ctx).
			SetHeader("Accept", "image/avif,image/webp,image/png,image/jpeg,image/*;q=0.8").
			SetDoNotParseResponse(true).
			Get(imageURL)
	})
	if err != nil {
		return "", err
	}
	defer resp.RawBody().Close()

	data, err := io.ReadAll(io.LimitReader(resp.RawBody(), f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return "", ErrImageTooLarge
	}

	mime, err := DetectImageMIME(data)
	if err != nil {
		return "", err
	}
	data, mime, err = Downscale(data, mime, f.maxWidth)
	if err != nil {
		return "", err
	}
	return EncodeDataURI(mime, data), nil
}

// FirstDataURI tries ranked candidates in order and returns the first one
// that downloads as an image, together with its source URL.
func (f *ImageFetcher) FirstDataURI(ctx context.Context, candidates []string, attempts int) (dataURI, source string, err error) {
	if attempts <= 0 || attempts > len(candidates) {
		attempts = len(candidates)
	}
	log := logging.FromContext(ctx, f.logger)

	for _, c := range candidates[:attempts] {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		uri, err := f.FetchDataURI(ctx, c)
		if err == nil {
			return uri, c, nil
		}
		log.Debug("image candidate rejected", zap.String("url", c), zap.Error(err))
	}
	return "", "", ErrNoImage
}

// DetectImageMIME sniffs raster image types from content.
func DetectImageMIME(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	mime, _, _ := strings.Cut(mt.String(), ";")
	if !strings.HasPrefix(mime, "image/") || mime == "image/svg+xml" {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mime)
	}
	return mime, nil
}

// Downscale shrinks images wider than maxWidth. PNG output stays PNG to keep
// transparency; everything else is re-encoded as JPEG. Images already
// narrow enough, or in formats the decoder does not know, pass unchanged.
func Downscale(data []byte, mime string, maxWidth int) ([]byte, string, error) {
	if maxWidth <= 0 {
		return data, mime, nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= maxWidth {
		return data, mime, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	height := cfg.Height * maxWidth / cfg.Width
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if mime == "image/png" {
		err = png.Encode(&buf, dst)
	} else {
		mime = "image/jpeg"
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), mime, nil
}

// EncodeDataURI builds data:<mime>;base64,<payload>.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a base64 data URI into MIME type and bytes.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, errors.New("data URI is not base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI: %w", err)
	}
	return strings.TrimSuffix(meta, ";base64"), data, nil
}
