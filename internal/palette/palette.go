package palette

import (
	"bytes"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"sleeve/internal/kmeans"
	"sleeve/internal/services"
)

const (
	// sampleSize bounds clustering cost independent of the source
	// resolution.
	sampleSize      = 128
	paletteClusters = 4
	paletteRestarts = 4
	paletteSeed     = 0
)

// HSV is a hue/saturation/value triple, each channel in [0,1].
type HSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// ImageFeatures is the dominant palette and aggregate color statistics
// of one decoded image.
type ImageFeatures struct {
	PaletteHex []string `json:"palette_hex"`
	HSVMean    HSV      `json:"hsv_mean"`
	Caption    string   `json:"caption"`
}

// Extract decodes imageBytes and derives its features. Undecodable
// bytes yield an ErrDecode-tagged error.
func Extract(imageBytes []byte) (ImageFeatures, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return ImageFeatures{}, services.Wrap(services.ErrDecode, "palette", "decode image", "unsupported or corrupt image bytes", err)
	}
	return FromImage(img), nil
}

// FromImage derives features from an already decoded image. The seeded
// clustering makes output deterministic for identical pixels.
func FromImage(img image.Image) ImageFeatures {
	small := imaging.Resize(img, sampleSize, sampleSize, imaging.Lanczos)

	points := make([][]float64, 0, sampleSize*sampleSize)
	var hSum, sSum, vSum float64
	for y := 0; y < sampleSize; y++ {
		for x := 0; x < sampleSize; x++ {
			px := small.NRGBAAt(x, y)
			points = append(points, []float64{float64(px.R), float64(px.G), float64(px.B)})

			h, s, v := colorful.Color{
				R: float64(px.R) / 255.0,
				G: float64(px.G) / 255.0,
				B: float64(px.B) / 255.0,
			}.Hsv()
			hSum += h / 360.0
			sSum += s
			vSum += v
		}
	}

	clustered := kmeans.Partition(points, paletteClusters, paletteRestarts, paletteSeed)
	paletteHex := make([]string, 0, len(clustered.Centers))
	for _, center := range clustered.Centers {
		paletteHex = append(paletteHex, hexFromRGB(center[0], center[1], center[2]))
	}

	pixelCount := float64(len(points))
	mean := HSV{
		H: hSum / pixelCount,
		S: sSum / pixelCount,
		V: vSum / pixelCount,
	}
	return ImageFeatures{
		PaletteHex: paletteHex,
		HSVMean:    mean,
		Caption:    Caption(mean),
	}
}

// Caption renders the three-word palette description for an HSV mean.
func Caption(mean HSV) string {
	return HueWord(mean.H) + ", " + SaturationWord(mean.S) + ", " + ValueWord(mean.V) + " palette"
}

// HueWord maps a mean hue to its tone word. The wrap-around band near
// red counts as warm.
func HueWord(h float64) string {
	switch {
	case h < 0.15 || h > 0.85:
		return "warm"
	case h > 0.45 && h < 0.75:
		return "cool"
	default:
		return "neutral"
	}
}

// SaturationWord maps a mean saturation to its tone word.
func SaturationWord(s float64) string {
	if s > 0.45 {
		return "saturated"
	}
	return "muted"
}

// ValueWord maps a mean value to its tone word.
func ValueWord(v float64) string {
	switch {
	case v > 0.6:
		return "bright"
	case v < 0.35:
		return "dark"
	default:
		return "midtone"
	}
}

// hexFromRGB clamps each channel to [0,255] and renders the lowercase
// hex triplet.
func hexFromRGB(r, g, b float64) string {
	return colorful.Color{
		R: clampChannel(r) / 255.0,
		G: clampChannel(g) / 255.0,
		B: clampChannel(b) / 255.0,
	}.Hex()
}

func clampChannel(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return float64(int(v))
}
