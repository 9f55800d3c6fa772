package vision

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ai-inspector/internal/domain/port"
)

const thresholdProgram = `
name: roi-test
procedures:
  InitProc:
    kind: init
  ProcessingProc:
    kind: processing
    roi:
      mode: threshold
      threshold: 40
      min_area_ratio: 0.01
      margin: 2
    output:
      width: 8
      height: 6
      interpolation: bilinear
`

// writePNG сохраняет изображение w×h с тёмным фоном и светлым прямоугольником spot.
func writePNG(t *testing.T, w, h int, spot image.Rectangle, fill color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 5, G: 5, B: 5, A: 255}
			if image.Pt(x, y).In(spot) {
				c = fill
			}
			img.SetNRGBA(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "img.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func initProgram(t *testing.T, src string) port.ProcedureCall {
	t.Helper()
	p, err := ParseProgram([]byte(src))
	require.NoError(t, err)

	initCall, err := p.Procedure(port.ProcInit)
	require.NoError(t, err)
	require.NoError(t, initCall.Execute(context.Background()))

	call, err := p.Procedure(port.ProcProcessing)
	require.NoError(t, err)
	return call
}

func runProcessing(t *testing.T, call port.ProcedureCall, path string) {
	t.Helper()
	call.SetInputCtrlParam(port.ParamImagePath, path)
	require.NoError(t, call.Execute(context.Background()))
}

func TestParseProgram_MissingProcedure(t *testing.T) {
	_, err := ParseProgram([]byte(`
name: broken
procedures:
  InitProc:
    kind: init
`))
	require.ErrorContains(t, err, port.ProcProcessing)
}

func TestParseProgram_WrongKind(t *testing.T) {
	_, err := ParseProgram([]byte(`
procedures:
  InitProc:
    kind: processing
  ProcessingProc:
    kind: processing
`))
	require.ErrorContains(t, err, "must be")
}

func TestProgram_UnknownProcedure(t *testing.T) {
	p, err := ParseProgram([]byte(thresholdProgram))
	require.NoError(t, err)

	_, err = p.Procedure("Nope")
	require.Error(t, err)
}

func TestProcessing_RequiresInit(t *testing.T) {
	p, err := ParseProgram([]byte(thresholdProgram))
	require.NoError(t, err)

	call, err := p.Procedure(port.ProcProcessing)
	require.NoError(t, err)
	call.SetInputCtrlParam(port.ParamImagePath, "x.png")
	require.ErrorIs(t, call.Execute(context.Background()), ErrNotInitialized)
}

func TestInit_RejectsInvalidOutput(t *testing.T) {
	p, err := ParseProgram([]byte(`
procedures:
  InitProc:
    kind: init
  ProcessingProc:
    kind: processing
    output:
      width: 0
      height: 10
`))
	require.NoError(t, err)

	call, err := p.Procedure(port.ProcInit)
	require.NoError(t, err)
	require.ErrorContains(t, call.Execute(context.Background()), "invalid output size")
}

func TestInit_RejectsUnknownInterpolation(t *testing.T) {
	p, err := ParseProgram([]byte(`
procedures:
  InitProc:
    kind: init
  ProcessingProc:
    kind: processing
    output: {width: 4, height: 4, interpolation: magic}
`))
	require.NoError(t, err)

	call, err := p.Procedure(port.ProcInit)
	require.NoError(t, err)
	require.ErrorContains(t, call.Execute(context.Background()), "unknown interpolation")
}

func TestProcessing_ThresholdROI(t *testing.T) {
	call := initProgram(t, thresholdProgram)
	path := writePNG(t, 40, 30, image.Rect(10, 5, 20, 15), color.NRGBA{R: 220, G: 180, B: 90, A: 255})

	runProcessing(t, call, path)
	require.Empty(t, call.OutputCtrlParam(port.OutErrCode))
	require.Empty(t, call.OutputCtrlParam(port.OutErrMsg))

	img := call.OutputImage(port.OutImage)
	require.NotNil(t, img)
	require.NoError(t, img.Validate())
	require.Equal(t, 8, img.Width)
	require.Equal(t, 6, img.Height)

	// центр ROI попадает в светлое пятно
	center := 3*8 + 4
	require.InDelta(t, 220, int(img.R[center]), 2)
	require.InDelta(t, 180, int(img.G[center]), 2)
	require.InDelta(t, 90, int(img.B[center]), 2)
}

func TestProcessing_NoROI(t *testing.T) {
	call := initProgram(t, thresholdProgram)
	path := writePNG(t, 20, 20, image.Rectangle{}, color.NRGBA{})

	runProcessing(t, call, path)
	require.Equal(t, ErrCodeNoROI, call.OutputCtrlParam(port.OutErrCode))
	require.NotEmpty(t, call.OutputCtrlParam(port.OutErrMsg))
	require.Nil(t, call.OutputImage(port.OutImage))
}

func TestProcessing_ROITooSmall(t *testing.T) {
	call := initProgram(t, thresholdProgram)
	path := writePNG(t, 100, 100, image.Rect(50, 50, 51, 51), color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	runProcessing(t, call, path)
	require.Equal(t, ErrCodeROITooSmall, call.OutputCtrlParam(port.OutErrCode))
}

func TestProcessing_UnreadableImage(t *testing.T) {
	call := initProgram(t, thresholdProgram)
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	runProcessing(t, call, path)
	require.Equal(t, ErrCodeImageRead, call.OutputCtrlParam(port.OutErrCode))
	require.Nil(t, call.OutputImage(port.OutImage))
}

func TestProcessing_FixedROIOutOfBounds(t *testing.T) {
	call := initProgram(t, `
procedures:
  InitProc:
    kind: init
  ProcessingProc:
    kind: processing
    roi:
      mode: fixed
      rect: {x: 10, y: 10, width: 50, height: 50}
    output: {width: 4, height: 4}
`)
	path := writePNG(t, 30, 30, image.Rectangle{}, color.NRGBA{})

	runProcessing(t, call, path)
	require.Equal(t, ErrCodeROIOutOfBound, call.OutputCtrlParam(port.OutErrCode))
}

func TestProcessing_FullUniformImage(t *testing.T) {
	call := initProgram(t, `
procedures:
  InitProc:
    kind: init
  ProcessingProc:
    kind: processing
    roi: {mode: full}
    output: {width: 5, height: 5, interpolation: nearest}
`)
	fill := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	path := writePNG(t, 16, 12, image.Rect(0, 0, 16, 12), fill)

	runProcessing(t, call, path)
	img := call.OutputImage(port.OutImage)
	require.NotNil(t, img)
	for i := 0; i < 25; i++ {
		require.InDelta(t, 200, int(img.R[i]), 1)
		require.InDelta(t, 100, int(img.G[i]), 1)
		require.InDelta(t, 50, int(img.B[i]), 1)
	}
}

func TestProcessing_CancelledContext(t *testing.T) {
	call := initProgram(t, thresholdProgram)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	call.SetInputCtrlParam(port.ParamImagePath, "x.png")
	require.ErrorIs(t, call.Execute(ctx), context.Canceled)
}

func TestResolveROI_MarginIsClipped(t *testing.T) {
	bounds := image.Rect(0, 0, 20, 20)
	spec := ROISpec{Mode: ROIThreshold, Margin: 5}

	roi, _, ok := resolveROI(bounds, image.Rect(2, 3, 18, 10), spec)
	require.True(t, ok)
	require.Equal(t, image.Rect(0, 0, 20, 15), roi)
}

func TestShippedProgram(t *testing.T) {
	p, err := LoadProgram(filepath.Join("..", "..", "..", "programs", "preprocess.yaml"))
	require.NoError(t, err)

	initProc, err := p.Procedure(port.ProcInit)
	require.NoError(t, err)
	require.NoError(t, initProc.Execute(context.Background()))

	call, err := p.Procedure(port.ProcProcessing)
	require.NoError(t, err)
	call.SetInputCtrlParam(port.ParamImagePath, filepath.Join(t.TempDir(), "missing.png"))
	require.NoError(t, call.Execute(context.Background()))
	require.Equal(t, ErrCodeImageRead, call.OutputCtrlParam(port.OutErrCode))
}
