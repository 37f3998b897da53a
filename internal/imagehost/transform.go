// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package imagehost

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// jpegQuality matches what "q_auto" settles on for photographs.
	jpegQuality = 82

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000
)

// Transform applies p to an encoded image and returns it as JPEG together
// with the output dimensions.
func Transform(data []byte, p Profile) ([]byte, int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, 0, 0, fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image: %w", err)
	}

	srcRect, w, h := fit(src.Bounds(), p)

	// JPEG has no alpha; transparent areas become white.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, srcRect, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), w, h, nil
}

// fit returns the source rectangle to sample and the output size.
func fit(b image.Rectangle, p Profile) (image.Rectangle, int, int) {
	sw, sh := b.Dx(), b.Dy()

	if p.Crop == CropFill {
		// Crop the source to the target aspect ratio around its centre.
		cw, ch := sw, sw*p.Height/p.Width
		if ch > sh {
			cw, ch = sh*p.Width/p.Height, sh
		}
		x0 := b.Min.X + (sw-cw)/2
		y0 := b.Min.Y + (sh-ch)/2
		return image.Rect(x0, y0, x0+cw, y0+ch), p.Width, p.Height
	}

	if sw <= p.Width && sh <= p.Height {
		return b, sw, sh
	}
	w, h := p.Width, sh*p.Width/sw
	if h > p.Height {
		w, h = sw*p.Height/sh, p.Height
	}
	return b, max(w, 1), max(h, 1)
}
