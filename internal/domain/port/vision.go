package port

import (
	"context"

	"ai-inspector/internal/domain/entity"
)

// Имена процедур и параметров программы машинного зрения.
const (
	ProcInit       = "InitProc"
	ProcProcessing = "ProcessingProc"

	ParamImagePath = "image_path"
	OutErrCode     = "err_code"
	OutErrMsg      = "err_msg"
	OutImage       = "image"
)

// VisionProgram загруженная программа движка машинного зрения
type VisionProgram interface {
	// Procedure создаёт вызов процедуры по имени
	Procedure(name string) (ProcedureCall, error)
}

// ProcedureCall вызов одной процедуры программы. Объект хранит состояние
// между вызовами и не потокобезопасен.
type ProcedureCall interface {
	// SetInputCtrlParam задаёт входной управляющий параметр
	SetInputCtrlParam(name, value string)

	// Execute выполняет процедуру
	Execute(ctx context.Context) error

	// OutputCtrlParam возвращает выходной управляющий параметр, "" если не задан
	OutputCtrlParam(name string) string

	// OutputImage возвращает выходное изображение, nil если его нет
	OutputImage(name string) *entity.PlanarImage
}
