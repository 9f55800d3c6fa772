//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"ai-inspector/internal/domain/entity"
)

// BackendName имя реализации движка для логов.
const BackendName = "go-image"

// process выполняет процедуру обработки на чистом Go: чтение, ROI, масштабирование.
func process(ctx context.Context, proc *procedure, path string) (processOutput, error) {
	src, err := imaging.Open(path)
	if err != nil {
		return failure(ErrCodeImageRead, "cannot read image %s: %v", path, err), nil
	}
	img := imaging.Clone(src)
	bounds := img.Bounds()

	var fg image.Rectangle
	if proc.def.ROI.Mode == ROIThreshold {
		fg = foregroundBounds(img, uint8(proc.def.ROI.Threshold))
	}
	roi, out, ok := resolveROI(bounds, fg, proc.def.ROI)
	if !ok {
		return out, nil
	}

	if err := ctx.Err(); err != nil {
		return processOutput{}, err
	}

	cropped := imaging.Crop(img, roi)
	resized := resize.Resize(uint(proc.def.Output.Width), uint(proc.def.Output.Height),
		cropped, resizeFunction(proc.interp))

	return processOutput{image: planarFromNRGBA(imaging.Clone(resized))}, nil
}

// foregroundBounds возвращает описывающий прямоугольник пикселей ярче порога.
func foregroundBounds(img *image.NRGBA, threshold uint8) image.Rectangle {
	var fg image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			px := row[(x-b.Min.X)*4:]
			if luminance(px[0], px[1], px[2]) > threshold {
				fg = fg.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return fg
}

// luminance яркость по ITU-R BT.601, как при переводе BGR в оттенки серого.
func luminance(r, g, b uint8) uint8 {
	return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000)
}

func planarFromNRGBA(img *image.NRGBA) *entity.PlanarImage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	p := &entity.PlanarImage{
		Width:  w,
		Height: h,
		R:      make([]byte, w*h),
		G:      make([]byte, w*h),
		B:      make([]byte, w*h),
	}
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			i := y*w + x
			p.R[i] = row[x*4]
			p.G[i] = row[x*4+1]
			p.B[i] = row[x*4+2]
		}
	}
	return p
}

func resizeFunction(i Interpolation) resize.InterpolationFunction {
	switch i {
	case InterpolationNearest:
		return resize.NearestNeighbor
	case InterpolationBicubic:
		return resize.Bicubic
	case InterpolationLanczos:
		return resize.Lanczos3
	default:
		return resize.Bilinear
	}
}
