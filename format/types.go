package format

type (
	FilterType       uint8
	FilterMode       uint8
	CompressionLevel uint8
	ColorType        uint8
)

// Filter type tags as they appear on the wire, one per scanline.
const (
	FilterNone    FilterType = 0 // FilterNone passes the row through unchanged.
	FilterSub     FilterType = 1 // FilterSub predicts each byte from the byte one pixel to the left.
	FilterUp      FilterType = 2 // FilterUp predicts each byte from the byte directly above.
	FilterAverage FilterType = 3 // FilterAverage predicts from the mean of left and above.
	FilterPaeth   FilterType = 4 // FilterPaeth predicts with the Paeth edge-detecting function.
)

const (
	// FilterModeAdaptive picks the cheapest filter per row by heuristic.
	FilterModeAdaptive FilterMode = 0x1
	// FilterModeFixed applies one configured filter to every row.
	FilterModeFixed FilterMode = 0x2
)

const (
	LevelFast    CompressionLevel = 0x1 // LevelFast favors throughput over ratio.
	LevelDefault CompressionLevel = 0x2 // LevelDefault is the codec's balanced setting.
	LevelHigh    CompressionLevel = 0x3 // LevelHigh favors ratio over throughput.
)

// Color types as they appear in the image header.
const (
	ColorGrayscale      ColorType = 0
	ColorTruecolor      ColorType = 2
	ColorIndexed        ColorType = 3
	ColorGrayscaleAlpha ColorType = 4
	ColorTruecolorAlpha ColorType = 6
)

func (f FilterType) String() string {
	switch f {
	case FilterNone:
		return "None"
	case FilterSub:
		return "Sub"
	case FilterUp:
		return "Up"
	case FilterAverage:
		return "Average"
	case FilterPaeth:
		return "Paeth"
	default:
		return "Unknown"
	}
}

// IsValid reports whether f is one of the five standard filter types.
func (f FilterType) IsValid() bool {
	return f <= FilterPaeth
}

func (m FilterMode) String() string {
	switch m {
	case FilterModeAdaptive:
		return "Adaptive"
	case FilterModeFixed:
		return "Fixed"
	default:
		return "Unknown"
	}
}

func (m FilterMode) IsValid() bool {
	return m == FilterModeAdaptive || m == FilterModeFixed
}

func (l CompressionLevel) String() string {
	switch l {
	case LevelFast:
		return "Fast"
	case LevelDefault:
		return "Default"
	case LevelHigh:
		return "High"
	default:
		return "Unknown"
	}
}

func (l CompressionLevel) IsValid() bool {
	return l == LevelFast || l == LevelDefault || l == LevelHigh
}

func (c ColorType) String() string {
	switch c {
	case ColorGrayscale:
		return "Grayscale"
	case ColorTruecolor:
		return "Truecolor"
	case ColorIndexed:
		return "Indexed"
	case ColorGrayscaleAlpha:
		return "GrayscaleAlpha"
	case ColorTruecolorAlpha:
		return "TruecolorAlpha"
	default:
		return "Unknown"
	}
}

func (c ColorType) IsValid() bool {
	switch c {
	case ColorGrayscale, ColorTruecolor, ColorIndexed, ColorGrayscaleAlpha, ColorTruecolorAlpha:
		return true
	default:
		return false
	}
}

// Channels returns the number of samples per pixel for the color type.
func (c ColorType) Channels() int {
	switch c {
	case ColorGrayscale, ColorIndexed:
		return 1
	case ColorGrayscaleAlpha:
		return 2
	case ColorTruecolor:
		return 3
	case ColorTruecolorAlpha:
		return 4
	default:
		return 0
	}
}

// SupportsBitDepth reports whether the depth is legal for the color type.
func (c ColorType) SupportsBitDepth(depth uint8) bool {
	switch c {
	case ColorGrayscale:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8 || depth == 16
	case ColorIndexed:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8
	case ColorTruecolor, ColorGrayscaleAlpha, ColorTruecolorAlpha:
		return depth == 8 || depth == 16
	default:
		return false
	}
}
