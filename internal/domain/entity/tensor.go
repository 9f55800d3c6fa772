package entity

import "fmt"

// Число каналов во входе модели (R, G, B).
const TensorChannels = 3

// Tensor — входной тензор модели в раскладке NCHW, batch=1.
type Tensor struct {
	Shape [4]int64 // [1, 3, H, W]
	Data  []float32
}

// NewTensor создаёт нулевой тензор [1, 3, height, width].
func NewTensor(height, width int) *Tensor {
	return &Tensor{
		Shape: [4]int64{1, TensorChannels, int64(height), int64(width)},
		Data:  make([]float32, TensorChannels*height*width),
	}
}

func (t *Tensor) index(c, y, x int) int {
	h, w := int(t.Shape[2]), int(t.Shape[3])
	return c*h*w + y*w + x
}

// At возвращает значение tensor[0, c, y, x].
func (t *Tensor) At(c, y, x int) float32 {
	return t.Data[t.index(c, y, x)]
}

// Set записывает значение tensor[0, c, y, x].
func (t *Tensor) Set(c, y, x int, v float32) {
	t.Data[t.index(c, y, x)] = v
}

// TensorFromBGR переводит буфер B,G,R(,A) в тензор [1,3,H,W] с порядком каналов
// R,G,B. Значения остаются в диапазоне 0..255, нормализации нет.
// Буфер блокируется на время конверсии и разблокируется на любом пути выхода.
func TensorFromBGR(buf *PixelBuffer) (*Tensor, error) {
	bits, err := buf.LockBits()
	if err != nil {
		return nil, fmt.Errorf("lock pixel buffer: %w", err)
	}
	defer buf.UnlockBits()

	t := NewTensor(bits.Height, bits.Width)
	bpp := bits.BytesPerPixel
	for y := 0; y < bits.Height; y++ {
		row := bits.Data[bits.RowStart(y) : bits.RowStart(y)+bits.Width*bpp]
		for x := 0; x < bits.Width; x++ {
			px := row[x*bpp : x*bpp+3]
			t.Set(0, y, x, float32(px[2]))
			t.Set(1, y, x, float32(px[1]))
			t.Set(2, y, x, float32(px[0]))
		}
	}

	return t, nil
}
