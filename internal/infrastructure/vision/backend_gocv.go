//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"ai-inspector/internal/domain/entity"
)

// BackendName имя реализации движка для логов.
const BackendName = "gocv"

// process выполняет процедуру обработки средствами OpenCV.
func process(ctx context.Context, proc *procedure, path string) (processOutput, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()
	if mat.Empty() {
		return failure(ErrCodeImageRead, "cannot read image %s", path), nil
	}
	bounds := image.Rect(0, 0, mat.Cols(), mat.Rows())

	var fg image.Rectangle
	if proc.def.ROI.Mode == ROIThreshold {
		fg = foregroundBounds(mat, float32(proc.def.ROI.Threshold))
	}
	roi, out, ok := resolveROI(bounds, fg, proc.def.ROI)
	if !ok {
		return out, nil
	}

	if err := ctx.Err(); err != nil {
		return processOutput{}, err
	}

	region := mat.Region(roi)
	defer region.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(region, &resized, image.Pt(proc.def.Output.Width, proc.def.Output.Height),
		0, 0, interpolationFlag(proc.interp))

	img, err := planarFromMat(resized)
	if err != nil {
		return processOutput{}, err
	}
	return processOutput{image: img}, nil
}

// foregroundBounds объединяет описывающие прямоугольники контуров ярче порога.
func foregroundBounds(mat gocv.Mat, threshold float32) image.Rectangle {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, threshold, 255, gocv.ThresholdBinary)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var fg image.Rectangle
	for i := 0; i < contours.Size(); i++ {
		fg = fg.Union(gocv.BoundingRect(contours.At(i)))
	}
	return fg
}

// planarFromMat раскладывает BGR Mat на отдельные каналы R, G, B.
func planarFromMat(mat gocv.Mat) (*entity.PlanarImage, error) {
	channels := gocv.Split(mat)
	for i := range channels {
		defer channels[i].Close()
	}
	if len(channels) != 3 {
		return nil, fmt.Errorf("expected 3 channels, got %d", len(channels))
	}

	img := &entity.PlanarImage{
		Width:  mat.Cols(),
		Height: mat.Rows(),
		B:      channels[0].ToBytes(),
		G:      channels[1].ToBytes(),
		R:      channels[2].ToBytes(),
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

func interpolationFlag(i Interpolation) gocv.InterpolationFlags {
	switch i {
	case InterpolationNearest:
		return gocv.InterpolationNearestNeighbor
	case InterpolationBicubic:
		return gocv.InterpolationCubic
	case InterpolationLanczos:
		return gocv.InterpolationLanczos4
	default:
		return gocv.InterpolationLinear
	}
}
