package ioutils

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// PrepareCoverArt normalizes downloaded cover art for embedding in tags
// or saving alongside the tracks.
//
// When maxSize is positive the image is scaled down to fit within a
// maxSize square, preserving aspect ratio; images already inside the
// bound are left at their size. When toJPEG is true (or the image was
// resized) the result is re-encoded as JPEG at quality 90, the format
// ID3 embeds most portably.
//
// Returns the input unchanged when neither transformation applies.
func PrepareCoverArt(data []byte, maxSize int, toJPEG bool) ([]byte, error) {
	if maxSize <= 0 && !toJPEG {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if maxSize > 0 {
		img = scaleToFit(img, maxSize)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// scaleToFit scales img down so both dimensions fit within max,
// preserving aspect ratio. Images already within the bound are returned
// unchanged. Catmull-Rom is used for high-quality scaling.
func scaleToFit(img image.Image, max int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= max && height <= max {
		return img
	}

	if width > height {
		height = height * max / width
		width = max
	} else {
		width = width * max / height
		height = max
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
