// Package imaging validates uploaded image references and builds thumbnails
// for images embedded as data URLs.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	"github.com/nfnt/resize"
)

const ThumbnailSize = 400

var (
	ErrInvalidImage = errors.New("invalid image")
	ErrTooLarge     = errors.New("image too large")
)

// IsDataURL reports whether s embeds its image as a base64 data URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:image/")
}

// DecodeDataURL returns the raw bytes of a base64 image data URL.
func DecodeDataURL(s string) ([]byte, error) {
	if !IsDataURL(s) {
		return nil, fmt.Errorf("%w: not an image data URL", ErrInvalidImage)
	}
	meta, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: data URL is not base64", ErrInvalidImage)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return raw, nil
}

// Validate accepts http(s) URLs, site-relative paths and base64 data URLs no
// bigger than maxMB once decoded.
func Validate(ref string, maxMB int) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("%w: empty", ErrInvalidImage)
	}
	if IsDataURL(ref) {
		// base64 inflates by 4/3; check the cheap bound before decoding
		limit := maxMB << 20
		if len(ref) > limit/3*4+64 {
			return ErrTooLarge
		}
		raw, err := DecodeDataURL(ref)
		if err != nil {
			return err
		}
		if len(raw) > limit {
			return ErrTooLarge
		}
		return nil
	}
	if strings.HasPrefix(ref, "/") {
		return nil
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: unsupported URL %q", ErrInvalidImage, ref)
	}
	return nil
}

// Thumbnail decodes a data URL image and returns a JPEG data URL bounded by
// ThumbnailSize on both sides.
func Thumbnail(dataURL string) (string, error) {
	raw, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	thumb := resize.Thumbnail(ThumbnailSize, ThumbnailSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
