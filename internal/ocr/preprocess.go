package ocr

import (
	"image"
	"image/png"
	"log/slog"
	"math"
	"os"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"

	_ "image/jpeg" // register decoders for the allowed image formats

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Fixed denoise parameters (non-local means): filter strength, patch radius
// (3 -> 7px patches) and search radius (10 -> 21px window).
const (
	nlmStrength     = 10.0
	nlmPatchRadius  = 3
	nlmSearchRadius = 10
)

// Preprocessor turns a scanned comprobante into a bilevel image tuned for
// OCR: grayscale, non-local-means denoise, Otsu global threshold.
type Preprocessor struct {
	logger *slog.Logger
}

func NewPreprocessor(logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{logger: logger}
}

// Prepare writes the preprocessed image to a temp PNG and returns its path
// plus a cleanup func. On any failure the original path comes back unchanged
// with a no-op cleanup: degraded OCR beats a failed request.
func (p *Preprocessor) Prepare(path string) (string, func()) {
	noop := func() {}

	f, err := os.Open(path)
	if err != nil {
		p.logger.Warn("preprocess: open failed, using original", "path", path, "error", err)
		return path, noop
	}
	img, _, err := image.Decode(f)
	_ = f.Close()
	if err != nil {
		p.logger.Warn("preprocess: decode failed, using original", "path", path, "error", err)
		return path, noop
	}

	bw := binarize(img)

	tmp, err := os.CreateTemp("", "cmp-pre-*.png")
	if err != nil {
		p.logger.Warn("preprocess: temp file failed, using original", "error", err)
		return path, noop
	}
	if err := png.Encode(tmp, bw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		p.logger.Warn("preprocess: encode failed, using original", "error", err)
		return path, noop
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return path, noop
	}
	return tmp.Name(), func() { _ = os.Remove(tmp.Name()) }
}

// binarize runs the full grayscale -> denoise -> threshold chain.
func binarize(img image.Image) *image.Gray {
	gray := toGray(effect.Grayscale(img))
	den := denoiseNLMeans(gray)
	return segment.Threshold(den, otsuLevel(den))
}

func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x-b.Min.X, y-b.Min.Y, src.At(x, y))
		}
	}
	return dst
}

// denoiseNLMeans is a windowed non-local-means filter over a grayscale
// image. For every pixel it averages similar pixels from the search window,
// weighting each candidate by the squared distance between the 7px patches
// around the two pixels.
func denoiseNLMeans(src *image.Gray) *image.Gray {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	at := func(x, y int) float64 {
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
		return float64(src.Pix[y*src.Stride+x])
	}

	patchDist := func(x1, y1, x2, y2 int) float64 {
		var d2 float64
		for py := -nlmPatchRadius; py <= nlmPatchRadius; py++ {
			for px := -nlmPatchRadius; px <= nlmPatchRadius; px++ {
				d := at(x1+px, y1+py) - at(x2+px, y2+py)
				d2 += d * d
			}
		}
		n := float64((2*nlmPatchRadius + 1) * (2*nlmPatchRadius + 1))
		return d2 / n
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum, sumW float64
			for sy := -nlmSearchRadius; sy <= nlmSearchRadius; sy++ {
				for sx := -nlmSearchRadius; sx <= nlmSearchRadius; sx++ {
					d2 := patchDist(x, y, x+sx, y+sy)
					wgt := math.Exp(-d2 / (nlmStrength * nlmStrength))
					sum += wgt * at(x+sx, y+sy)
					sumW += wgt
				}
			}
			dst.Pix[y*dst.Stride+x] = uint8(sum/sumW + 0.5)
		}
	}
	return dst
}

// otsuLevel picks the global threshold that maximizes between-class variance
// of the grayscale histogram.
func otsuLevel(img *image.Gray) uint8 {
	var hist [256]int
	total := 0
	for y := 0; y < img.Rect.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+img.Rect.Dx()]
		for _, v := range row {
			hist[v]++
		}
		total += img.Rect.Dx()
	}
	if total == 0 {
		return 128
	}

	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i) * float64(c)
	}

	var best float64
	var level uint8
	var wB, sumB float64
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = uint8(i)
		}
	}
	return level
}
