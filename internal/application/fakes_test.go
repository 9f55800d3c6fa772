package app

import (
	"context"
	"errors"
	"fmt"

	"ai-inspector/internal/domain/entity"
	"ai-inspector/internal/domain/port"
)

// fakeCall выдаёт заранее заданные выходы процедуры.
type fakeCall struct {
	inputs   map[string]string
	errCode  string
	errMsg   string
	image    *entity.PlanarImage
	execErr  error
	panicMsg string
	runs     int
}

func (c *fakeCall) SetInputCtrlParam(name, value string) {
	if c.inputs == nil {
		c.inputs = make(map[string]string)
	}
	c.inputs[name] = value
}

func (c *fakeCall) Execute(ctx context.Context) error {
	c.runs++
	if c.panicMsg != "" {
		panic(c.panicMsg)
	}
	return c.execErr
}

func (c *fakeCall) OutputCtrlParam(name string) string {
	switch name {
	case port.OutErrCode:
		return c.errCode
	case port.OutErrMsg:
		return c.errMsg
	}
	return ""
}

func (c *fakeCall) OutputImage(name string) *entity.PlanarImage {
	if name != port.OutImage {
		return nil
	}
	return c.image
}

type fakeProgram struct {
	init       *fakeCall
	processing *fakeCall
}

func newFakeProgram(processing *fakeCall) *fakeProgram {
	return &fakeProgram{init: &fakeCall{}, processing: processing}
}

func (p *fakeProgram) Procedure(name string) (port.ProcedureCall, error) {
	switch name {
	case port.ProcInit:
		return p.init, nil
	case port.ProcProcessing:
		return p.processing, nil
	}
	return nil, fmt.Errorf("unknown procedure %s", name)
}

type fakeAlerter struct {
	notified []string
	once     []string
}

func (a *fakeAlerter) Notify(title, message string)     { a.notified = append(a.notified, title) }
func (a *fakeAlerter) NotifyOnce(title, message string) { a.once = append(a.once, title) }

type fakeMapper map[string][2]string

func (m fakeMapper) Lookup(label string) (string, string) {
	if v, ok := m[label]; ok {
		return v[0], v[1]
	}
	return label, ""
}

type fakeSession struct {
	scores []float32
	err    error
	input  *entity.Tensor
	closed bool
}

func (s *fakeSession) Run(ctx context.Context, input *entity.Tensor) ([]float32, error) {
	s.input = input
	return s.scores, s.err
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeFactory struct {
	gpuErr  error
	cpuErr  error
	gpuOpts *entity.GPUOptions
	cpuUsed bool
	session *fakeSession
}

func (f *fakeFactory) OpenGPU(opts entity.GPUOptions) (port.InferenceSession, error) {
	f.gpuOpts = &opts
	if f.gpuErr != nil {
		return nil, f.gpuErr
	}
	return f.session, nil
}

func (f *fakeFactory) OpenCPU() (port.InferenceSession, error) {
	f.cpuUsed = true
	if f.cpuErr != nil {
		return nil, f.cpuErr
	}
	return f.session, nil
}

func gpuFailure(cause string) error {
	return fmt.Errorf("%w: create session: %w", entity.ErrGPUBackend, errors.New(cause))
}

// solidImage изображение w×h одного цвета.
func solidImage(w, h int, r, g, b byte) *entity.PlanarImage {
	img := &entity.PlanarImage{Width: w, Height: h,
		R: make([]byte, w*h), G: make([]byte, w*h), B: make([]byte, w*h)}
	for i := 0; i < w*h; i++ {
		img.R[i], img.G[i], img.B[i] = r, g, b
	}
	return img
}
