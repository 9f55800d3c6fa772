package vision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"ai-inspector/internal/domain/entity"
	"ai-inspector/internal/domain/port"
)

// Виды процедур программы.
const (
	KindInit       = "init"
	KindProcessing = "processing"
)

var ErrNotInitialized = errors.New("vision program is not initialized")

// ProcedureDef описание процедуры в файле программы.
type ProcedureDef struct {
	Kind   string     `yaml:"kind"`
	ROI    ROISpec    `yaml:"roi"`
	Output OutputSpec `yaml:"output"`
}

// OutputSpec размер выходного изображения для модели.
type OutputSpec struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Interpolation string `yaml:"interpolation"`
}

type programFile struct {
	Name       string                  `yaml:"name"`
	Procedures map[string]ProcedureDef `yaml:"procedures"`
}

// Program — программа препроцессинга, загруженная из YAML.
// Процедуры обработки нельзя выполнять до процедуры инициализации.
type Program struct {
	Name  string
	procs map[string]*procedure

	mu       sync.RWMutex
	compiled bool
}

type procedure struct {
	name   string
	def    ProcedureDef
	interp Interpolation
}

// LoadProgram читает программу и проверяет наличие обязательных процедур.
func LoadProgram(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vision program: %w", err)
	}
	return ParseProgram(data)
}

// ParseProgram разбирает программу из YAML.
func ParseProgram(data []byte) (*Program, error) {
	var file programFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse vision program: %w", err)
	}

	p := &Program{Name: file.Name, procs: make(map[string]*procedure, len(file.Procedures))}
	for name, def := range file.Procedures {
		p.procs[name] = &procedure{name: name, def: def}
	}

	for name, kind := range map[string]string{port.ProcInit: KindInit, port.ProcProcessing: KindProcessing} {
		proc, ok := p.procs[name]
		if !ok {
			return nil, fmt.Errorf("vision program %q: procedure %s is missing", p.Name, name)
		}
		if proc.def.Kind != kind {
			return nil, fmt.Errorf("vision program %q: procedure %s must be %q, got %q", p.Name, name, kind, proc.def.Kind)
		}
	}

	return p, nil
}

// Procedure создаёт вызов процедуры по имени.
func (p *Program) Procedure(name string) (port.ProcedureCall, error) {
	proc, ok := p.procs[name]
	if !ok {
		return nil, fmt.Errorf("vision program %q: unknown procedure %s", p.Name, name)
	}
	return &procedureCall{program: p, proc: proc, inputs: make(map[string]string)}, nil
}

// compile проверяет процедуры обработки и разрешает параметры.
func (p *Program) compile() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for name, proc := range p.procs {
		if proc.def.Kind != KindProcessing {
			continue
		}
		out := proc.def.Output
		if out.Width <= 0 || out.Height <= 0 {
			return fmt.Errorf("procedure %s: invalid output size %dx%d", name, out.Width, out.Height)
		}
		interp, err := ParseInterpolation(out.Interpolation)
		if err != nil {
			return fmt.Errorf("procedure %s: %w", name, err)
		}
		if err := proc.def.ROI.validate(); err != nil {
			return fmt.Errorf("procedure %s: %w", name, err)
		}
		proc.interp = interp
	}

	p.compiled = true
	return nil
}

func (p *Program) isCompiled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.compiled
}

// procedureCall хранит входы и выходы последнего выполнения.
type procedureCall struct {
	program *Program
	proc    *procedure

	inputs  map[string]string
	outCtrl map[string]string
	outImg  map[string]*entity.PlanarImage
}

func (c *procedureCall) SetInputCtrlParam(name, value string) {
	c.inputs[name] = value
}

func (c *procedureCall) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.outCtrl = make(map[string]string)
	c.outImg = make(map[string]*entity.PlanarImage)

	switch c.proc.def.Kind {
	case KindInit:
		return c.program.compile()

	case KindProcessing:
		if !c.program.isCompiled() {
			return ErrNotInitialized
		}
		path, ok := c.inputs[port.ParamImagePath]
		if !ok {
			return fmt.Errorf("procedure %s: input %s is not set", c.proc.name, port.ParamImagePath)
		}

		out, err := process(ctx, c.proc, path)
		if err != nil {
			return fmt.Errorf("procedure %s: %w", c.proc.name, err)
		}
		c.outCtrl[port.OutErrCode] = out.errCode
		c.outCtrl[port.OutErrMsg] = out.errMsg
		if out.image != nil {
			c.outImg[port.OutImage] = out.image
		}
		return nil

	default:
		return fmt.Errorf("procedure %s: unknown kind %q", c.proc.name, c.proc.def.Kind)
	}
}

func (c *procedureCall) OutputCtrlParam(name string) string {
	return c.outCtrl[name]
}

func (c *procedureCall) OutputImage(name string) *entity.PlanarImage {
	return c.outImg[name]
}

// processOutput результат процедуры обработки.
type processOutput struct {
	image   *entity.PlanarImage
	errCode string
	errMsg  string
}

func failure(code, format string, args ...any) processOutput {
	return processOutput{errCode: code, errMsg: fmt.Sprintf(format, args...)}
}

var _ port.VisionProgram = (*Program)(nil)
