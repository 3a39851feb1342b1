package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/arloliu/pngpack/chunk"
	"github.com/arloliu/pngpack/format"
)

// rawImage is a decoded image in encoder-ready form: a header, one raw byte
// slice per row, and palette/transparency metadata for indexed inputs.
type rawImage struct {
	header  *chunk.Header
	rows    [][]byte
	palette []byte // packed RGB triplets, nil unless indexed
	alpha   []byte // per-entry alpha, nil when fully opaque
}

// parseLevel maps the -level flag to a compression level. It accepts the
// numeric spellings 1/6/9 alongside the names.
func parseLevel(s string) (format.CompressionLevel, error) {
	switch s {
	case "1", "fast":
		return format.LevelFast, nil
	case "6", "default":
		return format.LevelDefault, nil
	case "9", "high":
		return format.LevelHigh, nil
	default:
		return 0, fmt.Errorf("unknown level %q (want 1|fast, 6|default, 9|high)", s)
	}
}

// parseFilter maps the -filter flag to a filter mode and, for fixed modes,
// the filter type to apply to every row.
func parseFilter(s string) (format.FilterMode, format.FilterType, error) {
	switch s {
	case "adaptive":
		return format.FilterModeAdaptive, 0, nil
	case "none":
		return format.FilterModeFixed, format.FilterNone, nil
	case "sub":
		return format.FilterModeFixed, format.FilterSub, nil
	case "up":
		return format.FilterModeFixed, format.FilterUp, nil
	case "average":
		return format.FilterModeFixed, format.FilterAverage, nil
	case "paeth":
		return format.FilterModeFixed, format.FilterPaeth, nil
	default:
		return 0, 0, fmt.Errorf("unknown filter %q (want adaptive|none|sub|up|average|paeth)", s)
	}
}

// fromImage converts a decoded image into encoder-ready raw rows, picking the
// output color type and bit depth that preserve the source samples exactly.
// Inputs outside the directly supported types are converted to 8-bit RGBA.
func fromImage(img image.Image) (*rawImage, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("empty image %dx%d", width, height)
	}

	switch src := img.(type) {
	case *image.Gray:
		return &rawImage{
			header: chunk.NewHeader(uint32(width), uint32(height), 8, format.ColorGrayscale),
			rows:   sliceRows(src.Pix, src.Stride, width, height),
		}, nil

	case *image.Gray16:
		// Gray16 pixel bytes are already big-endian.
		return &rawImage{
			header: chunk.NewHeader(uint32(width), uint32(height), 16, format.ColorGrayscale),
			rows:   sliceRows(src.Pix, src.Stride, width*2, height),
		}, nil

	case *image.NRGBA:
		return &rawImage{
			header: chunk.NewHeader(uint32(width), uint32(height), 8, format.ColorTruecolorAlpha),
			rows:   sliceRows(src.Pix, src.Stride, width*4, height),
		}, nil

	case *image.NRGBA64:
		return &rawImage{
			header: chunk.NewHeader(uint32(width), uint32(height), 16, format.ColorTruecolorAlpha),
			rows:   sliceRows(src.Pix, src.Stride, width*8, height),
		}, nil

	case *image.RGBA:
		// Opaque truecolor decodes as RGBA; drop the constant alpha byte.
		return &rawImage{
			header: chunk.NewHeader(uint32(width), uint32(height), 8, format.ColorTruecolor),
			rows:   stripAlphaRows(src.Pix, src.Stride, width, height, 1),
		}, nil

	case *image.RGBA64:
		return &rawImage{
			header: chunk.NewHeader(uint32(width), uint32(height), 16, format.ColorTruecolor),
			rows:   stripAlphaRows(src.Pix, src.Stride, width, height, 2),
		}, nil

	case *image.Paletted:
		palette, alpha, err := packPalette(src.Palette)
		if err != nil {
			return nil, err
		}

		return &rawImage{
			header:  chunk.NewHeader(uint32(width), uint32(height), 8, format.ColorIndexed),
			rows:    sliceRows(src.Pix, src.Stride, width, height),
			palette: palette,
			alpha:   alpha,
		}, nil

	default:
		// Uncommon source types go through a full RGBA conversion.
		dst := image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)

		return &rawImage{
			header: chunk.NewHeader(uint32(width), uint32(height), 8, format.ColorTruecolorAlpha),
			rows:   sliceRows(dst.Pix, dst.Stride, width*4, height),
		}, nil
	}
}

// sliceRows cuts one sub-slice per row out of a pixel buffer. The encoder
// copies row bytes on submission, so the slices can share backing storage.
func sliceRows(pix []byte, stride, rowBytes, height int) [][]byte {
	rows := make([][]byte, height)
	for y := range height {
		rows[y] = pix[y*stride : y*stride+rowBytes]
	}

	return rows
}

// stripAlphaRows rewrites RGBA samples as RGB rows, dropping the alpha
// channel. sampleBytes is 1 for 8-bit channels and 2 for 16-bit channels.
func stripAlphaRows(pix []byte, stride, width, height, sampleBytes int) [][]byte {
	pixelIn := 4 * sampleBytes
	pixelOut := 3 * sampleBytes

	rows := make([][]byte, height)
	for y := range height {
		row := make([]byte, width*pixelOut)
		src := pix[y*stride:]
		for x := range width {
			copy(row[x*pixelOut:(x+1)*pixelOut], src[x*pixelIn:x*pixelIn+pixelOut])
		}
		rows[y] = row
	}

	return rows
}

// packPalette flattens a color palette into packed RGB triplets plus the
// per-entry alpha values. The alpha slice is trimmed of trailing opaque
// entries and nil when every entry is opaque.
func packPalette(palette color.Palette) ([]byte, []byte, error) {
	if len(palette) == 0 || len(palette) > 256 {
		return nil, nil, fmt.Errorf("palette has %d entries (want 1-256)", len(palette))
	}

	rgb := make([]byte, 0, len(palette)*3)
	alpha := make([]byte, 0, len(palette))
	for _, entry := range palette {
		switch c := entry.(type) {
		case color.RGBA:
			rgb = append(rgb, c.R, c.G, c.B)
			alpha = append(alpha, c.A)
		case color.NRGBA:
			rgb = append(rgb, c.R, c.G, c.B)
			alpha = append(alpha, c.A)
		default:
			r, g, b, a := entry.RGBA()
			rgb = append(rgb, byte(r>>8), byte(g>>8), byte(b>>8))
			alpha = append(alpha, byte(a>>8))
		}
	}

	last := len(alpha)
	for last > 0 && alpha[last-1] == 0xff {
		last--
	}
	if last == 0 {
		return rgb, nil, nil
	}

	return rgb, alpha[:last], nil
}
