package media

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"sort"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"showcase_ingest/internal/models"
)

// Prober reads pixel dimensions without decoding the whole image.
type Prober interface {
	Probe(path string) (width, height int, err error)
}

type ConfigProber struct{}

func (ConfigProber) Probe(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// PaletteExtractor picks one representative colour, as "#rrggbb".
type PaletteExtractor interface {
	Dominant(path string) (string, error)
}

// Muted swatch targets, matching the Vibrant palette definitions.
const (
	mutedTargetSat  = 0.3
	mutedMaxSat     = 0.4
	mutedTargetLuma = 0.5
	mutedMinLuma    = 0.3
	mutedMaxLuma    = 0.7
)

// MutedPalette clusters the image with k-means and returns the muted swatch.
type MutedPalette struct {
	K int
}

func (p MutedPalette) Dominant(path string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", err
	}
	k := p.K
	if k <= 0 {
		k = 6
	}
	items, err := prominentcolor.KmeansWithAll(k, img, prominentcolor.ArgumentNoCropping, prominentcolor.DefaultSize, nil)
	if err != nil {
		return "", err
	}
	swatches := make([]Swatch, 0, len(items))
	for _, item := range items {
		swatches = append(swatches, Swatch{
			Color: colorful.Color{
				R: float64(item.Color.R) / 255,
				G: float64(item.Color.G) / 255,
				B: float64(item.Color.B) / 255,
			},
			Population: item.Cnt,
		})
	}
	c, ok := PickMuted(swatches)
	if !ok {
		return "", fmt.Errorf("no swatches extracted from %s", path)
	}
	return c.Hex(), nil
}

type Swatch struct {
	Color      colorful.Color
	Population int
}

// PickMuted scores swatches inside the muted saturation/lightness window by
// closeness to the targets and by population. When no swatch falls inside
// the window, the most populous one is pulled into it.
func PickMuted(swatches []Swatch) (colorful.Color, bool) {
	if len(swatches) == 0 {
		return colorful.Color{}, false
	}
	maxPop := 0
	for _, s := range swatches {
		if s.Population > maxPop {
			maxPop = s.Population
		}
	}
	if maxPop == 0 {
		maxPop = 1
	}

	best, bestScore := -1, -1.0
	for i, s := range swatches {
		_, sat, luma := s.Color.Hsl()
		if sat > mutedMaxSat || luma < mutedMinLuma || luma > mutedMaxLuma {
			continue
		}
		score := weightedMean(
			1-math.Abs(sat-mutedTargetSat), 3,
			1-math.Abs(luma-mutedTargetLuma), 6.5,
			float64(s.Population)/float64(maxPop), 0.5,
		)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 {
		return swatches[best].Color, true
	}

	sorted := append([]Swatch(nil), swatches...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Population > sorted[j].Population })
	h, sat, luma := sorted[0].Color.Hsl()
	sat = math.Min(sat, mutedMaxSat)
	luma = math.Max(mutedMinLuma, math.Min(luma, mutedMaxLuma))
	return colorful.Hsl(h, sat, luma).Clamped(), true
}

func weightedMean(pairs ...float64) float64 {
	var sum, weights float64
	for i := 0; i+1 < len(pairs); i += 2 {
		sum += pairs[i] * pairs[i+1]
		weights += pairs[i+1]
	}
	return sum / weights
}

// Extractor derives dimensions and colour from the primary thumbnail.
type Extractor struct {
	prober  Prober
	palette PaletteExtractor
}

func NewExtractor(prober Prober, palette PaletteExtractor) *Extractor {
	return &Extractor{prober: prober, palette: palette}
}

// Dimensions fills Width and Height of asset from asset.ThumbPath.
func (e *Extractor) Dimensions(asset *models.SubmissionAsset) error {
	path := asset.ThumbPath
	if path == "" || !exists(path) {
		return &ExtractionError{Kind: FileMissing, Path: path}
	}
	if !IsRaster(path) {
		return &ExtractionError{Kind: NotAnImage, Path: path}
	}
	w, h, err := e.prober.Probe(path)
	if err != nil {
		return &ExtractionError{Kind: ProbeFailure, Path: path, Err: err}
	}
	asset.Width, asset.Height = w, h
	return nil
}

// Color fills asset.Color from asset.ThumbPath.
func (e *Extractor) Color(asset *models.SubmissionAsset) error {
	if asset.ThumbPath == "" {
		return &ExtractionError{Kind: FileMissing}
	}
	hex, err := e.palette.Dominant(asset.ThumbPath)
	if err != nil {
		return &ExtractionError{Kind: ProbeFailure, Path: asset.ThumbPath, Err: err}
	}
	asset.Color = hex
	return nil
}
