package entity

import (
	"errors"
	"fmt"
)

// Количество байт на пиксель в буфере, который отдаёт препроцессинг.
const BytesPerPixelBGRA = 4

var (
	ErrBufferLocked    = errors.New("pixel buffer is already locked")
	ErrInvalidGeometry = errors.New("invalid pixel buffer geometry")
)

// PlanarImage — изображение движка машинного зрения: три отдельных канала
// одинаковой длины, построчно, без выравнивания строк.
type PlanarImage struct {
	Width  int
	Height int
	R      []byte
	G      []byte
	B      []byte
}

// Validate проверяет, что длины каналов совпадают с размером изображения.
func (p *PlanarImage) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, p.Width, p.Height)
	}
	n := p.Width * p.Height
	if len(p.R) != n || len(p.G) != n || len(p.B) != n {
		return fmt.Errorf("%w: channels r=%d g=%d b=%d, want %d",
			ErrInvalidGeometry, len(p.R), len(p.G), len(p.B), n)
	}
	return nil
}

// ToBGRA перепаковывает каналы в буфер B,G,R,A (A=255), 4 байта на пиксель.
func (p *PlanarImage) ToBGRA() (*PixelBuffer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := p.Width * p.Height
	pix := make([]byte, n*BytesPerPixelBGRA)
	for i := 0; i < n; i++ {
		pix[i*4] = p.B[i]
		pix[i*4+1] = p.G[i]
		pix[i*4+2] = p.R[i]
		pix[i*4+3] = 255
	}

	return &PixelBuffer{
		Width:         p.Width,
		Height:        p.Height,
		Stride:        p.Width * BytesPerPixelBGRA,
		BytesPerPixel: BytesPerPixelBGRA,
		Pix:           pix,
	}, nil
}

// PixelBuffer — упакованный буфер в порядке B,G,R(,A). Stride может быть
// больше Width*BytesPerPixel из-за выравнивания строк.
type PixelBuffer struct {
	Width         int
	Height        int
	Stride        int
	BytesPerPixel int
	Pix           []byte

	locked bool
}

// LockedBits стабильное представление буфера на время блокировки.
type LockedBits struct {
	Width         int
	Height        int
	Stride        int
	BytesPerPixel int
	Data          []byte
}

// RowStart возвращает смещение первого байта строки y.
func (l *LockedBits) RowStart(y int) int {
	return y * l.Stride
}

// LockBits блокирует буфер и проверяет геометрию относительно длины Pix.
// Каждый успешный вызов должен завершаться UnlockBits.
func (b *PixelBuffer) LockBits() (*LockedBits, error) {
	if b.locked {
		return nil, ErrBufferLocked
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	b.locked = true

	return &LockedBits{
		Width:         b.Width,
		Height:        b.Height,
		Stride:        b.Stride,
		BytesPerPixel: b.BytesPerPixel,
		Data:          b.Pix,
	}, nil
}

// UnlockBits снимает блокировку. Повторный вызов безопасен.
func (b *PixelBuffer) UnlockBits() {
	b.locked = false
}

// Locked сообщает, заблокирован ли буфер.
func (b *PixelBuffer) Locked() bool {
	return b.locked
}

func (b *PixelBuffer) validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, b.Width, b.Height)
	}
	if b.BytesPerPixel < 3 {
		return fmt.Errorf("%w: %d bytes per pixel", ErrInvalidGeometry, b.BytesPerPixel)
	}
	rowBytes := b.Width * b.BytesPerPixel
	if b.Stride < rowBytes {
		return fmt.Errorf("%w: stride %d < row %d", ErrInvalidGeometry, b.Stride, rowBytes)
	}
	// последняя строка может быть без выравнивания
	need := (b.Height-1)*b.Stride + rowBytes
	if len(b.Pix) < need {
		return fmt.Errorf("%w: buffer has %d bytes, need %d", ErrInvalidGeometry, len(b.Pix), need)
	}
	return nil
}
