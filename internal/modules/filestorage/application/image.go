package application

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/ltaportal/procurement/internal/modules/filestorage/domain"
)

// ThumbnailSize is the longest side of product thumbnails, in pixels.
const ThumbnailSize = 300

// Thumbnail decodes an image and re-encodes it as a JPEG that fits in a
// size x size box, keeping the aspect ratio.
func Thumbnail(data []byte, size int) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}

	dst := imaging.Fit(src, size, size, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, dst, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
