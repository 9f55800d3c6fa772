package vision

import (
	"fmt"
	"image"
	"strings"
)

// Коды ошибок процедуры обработки.
const (
	ErrCodeImageRead     = "ERR_ImageRead"
	ErrCodeNoROI         = "ERR_NoROI"
	ErrCodeROITooSmall   = "ERR_ROITooSmall"
	ErrCodeROIOutOfBound = "ERR_ROIOutOfBounds"
)

// ROIMode способ выбора области интереса.
type ROIMode string

const (
	ROIFull      ROIMode = "full"
	ROIFixed     ROIMode = "fixed"
	ROIThreshold ROIMode = "threshold"
)

// Rect прямоугольник в координатах исходного изображения.
type Rect struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func (r Rect) rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// ROISpec параметры поиска ROI.
type ROISpec struct {
	Mode         ROIMode `yaml:"mode"`
	Threshold    int     `yaml:"threshold"`
	MinAreaRatio float64 `yaml:"min_area_ratio"`
	Margin       int     `yaml:"margin"`
	Rect         Rect    `yaml:"rect"`
}

func (s *ROISpec) validate() error {
	if s.Mode == "" {
		s.Mode = ROIFull
	}
	switch s.Mode {
	case ROIFull:
	case ROIFixed:
		if s.Rect.Width <= 0 || s.Rect.Height <= 0 {
			return fmt.Errorf("roi: fixed rect has size %dx%d", s.Rect.Width, s.Rect.Height)
		}
	case ROIThreshold:
		if s.Threshold < 0 || s.Threshold > 255 {
			return fmt.Errorf("roi: threshold %d is out of 0..255", s.Threshold)
		}
		if s.MinAreaRatio < 0 || s.MinAreaRatio > 1 {
			return fmt.Errorf("roi: min_area_ratio %.3f is out of 0..1", s.MinAreaRatio)
		}
		if s.Margin < 0 {
			return fmt.Errorf("roi: negative margin %d", s.Margin)
		}
	default:
		return fmt.Errorf("roi: unknown mode %q", s.Mode)
	}
	return nil
}

// resolveROI выбирает область интереса. foreground это описывающий прямоугольник
// пикселей ярче порога (пустой, если таких нет); используется только в режиме threshold.
func resolveROI(bounds, foreground image.Rectangle, spec ROISpec) (image.Rectangle, processOutput, bool) {
	switch spec.Mode {
	case ROIFixed:
		r := spec.Rect.rectangle()
		if !r.In(bounds) {
			return image.Rectangle{}, failure(ErrCodeROIOutOfBound,
				"roi %v is outside of image %v", r, bounds), false
		}
		return r, processOutput{}, true

	case ROIThreshold:
		if foreground.Empty() {
			return image.Rectangle{}, failure(ErrCodeNoROI,
				"no region brighter than %d", spec.Threshold), false
		}
		total := bounds.Dx() * bounds.Dy()
		ratio := float64(foreground.Dx()*foreground.Dy()) / float64(total)
		if ratio < spec.MinAreaRatio {
			return image.Rectangle{}, failure(ErrCodeROITooSmall,
				"roi area ratio %.4f is below %.4f", ratio, spec.MinAreaRatio), false
		}
		return foreground.Inset(-spec.Margin).Intersect(bounds), processOutput{}, true

	default:
		return bounds, processOutput{}, true
	}
}

// Interpolation метод интерполяции при масштабировании.
type Interpolation int

const (
	InterpolationBilinear Interpolation = iota
	InterpolationNearest
	InterpolationBicubic
	InterpolationLanczos
)

// ParseInterpolation разбирает имя метода; пустая строка означает bilinear.
func ParseInterpolation(name string) (Interpolation, error) {
	switch strings.ToLower(name) {
	case "", "bilinear", "linear":
		return InterpolationBilinear, nil
	case "nearest":
		return InterpolationNearest, nil
	case "bicubic", "cubic":
		return InterpolationBicubic, nil
	case "lanczos":
		return InterpolationLanczos, nil
	default:
		return 0, fmt.Errorf("unknown interpolation %q", name)
	}
}
