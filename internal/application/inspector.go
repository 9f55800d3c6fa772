package app

import (
	"context"
	"fmt"

	"ai-inspector/internal/domain/entity"
)

// Inspector — общая точка входа для бота, REST и CLI.
// Хранит результат Bootstrap и отказывает в инспекции, пока подсистема выключена.
type Inspector struct {
	service *InspectionService
	status  entity.Status
}

func NewInspector(service *InspectionService, status entity.Status) *Inspector {
	if service == nil && status.IsReady() {
		status = entity.Disabled(fmt.Errorf("no inspection service"))
	}
	return &Inspector{service: service, status: status}
}

func (i *Inspector) Status() entity.Status {
	return i.status
}

func (i *Inspector) Inspect(ctx context.Context, imagePath string) (*entity.InspectionResult, error) {
	if !i.status.IsReady() {
		return nil, fmt.Errorf("%w: %s", ErrInspectionDisabled, i.status.Reason)
	}
	return i.service.Inspect(ctx, imagePath)
}

func (i *Inspector) Close() error {
	if i.service == nil {
		return nil
	}
	return i.service.Close()
}
