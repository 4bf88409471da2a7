package audio

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrShape is matched by every *ShapeError.
var ErrShape = errors.New("unexpected tensor shape")

// Tensor is a dense row-major float buffer as returned by the model.
// A rank 2 tensor is laid out channels × samples.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// Rank returns the number of axes.
func (t Tensor) Rank() int {
	return len(t.Shape)
}

// Channels returns the size of the channel axis of a rank 2 tensor.
func (t Tensor) Channels() int {
	if t.Rank() != 2 {
		return 0
	}
	return t.Shape[0]
}

// Samples returns samples per channel of a rank 2 tensor.
func (t Tensor) Samples() int {
	if t.Rank() != 2 {
		return 0
	}
	return t.Shape[1]
}

// At returns the sample at (channel, index) of a rank 2 tensor.
func (t Tensor) At(channel, index int) float32 {
	return t.Data[channel*t.Shape[1]+index]
}

// ShapeError reports a tensor that cannot be brought into channels × samples form.
type ShapeError struct {
	Shape  []int
	Reason string
}

func (e *ShapeError) Error() string {
	msg := "unexpected tensor shape: " + FormatShape(e.Shape)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// FormatShape renders a shape as "(d0, d1, ...)".
func FormatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Normalize reshapes model output into a rank 2 (channels × samples) tensor.
//
//	rank 3 -> drop the leading batch axis, which must be 1
//	rank 2 -> unchanged
//	rank 1 -> add a leading channel axis of size 1
//
// Any other rank is rejected. The returned tensor shares Data with t.
func Normalize(t Tensor) (Tensor, error) {
	var shape []int
	switch t.Rank() {
	case 3:
		if t.Shape[0] != 1 {
			return Tensor{}, &ShapeError{
				Shape:  cloneShape(t.Shape),
				Reason: fmt.Sprintf("batch axis has size %d, want 1", t.Shape[0]),
			}
		}
		shape = []int{t.Shape[1], t.Shape[2]}
	case 2:
		shape = cloneShape(t.Shape)
	case 1:
		shape = []int{1, t.Shape[0]}
	default:
		return Tensor{}, &ShapeError{
			Shape:  cloneShape(t.Shape),
			Reason: fmt.Sprintf("rank %d", t.Rank()),
		}
	}

	if err := checkSize(shape, len(t.Data)); err != nil {
		return Tensor{}, err
	}
	return Tensor{Shape: shape, Data: t.Data}, nil
}

func checkSize(shape []int, n int) error {
	want := 1
	for _, d := range shape {
		if d < 0 {
			return &ShapeError{Shape: cloneShape(shape), Reason: "negative dimension"}
		}
		if d > 0 && want > math.MaxInt/d {
			return &ShapeError{Shape: cloneShape(shape), Reason: "shape too large"}
		}
		want *= d
	}
	if want != n {
		return &ShapeError{
			Shape:  cloneShape(shape),
			Reason: fmt.Sprintf("shape holds %d values, buffer has %d", want, n),
		}
	}
	return nil
}

func cloneShape(shape []int) []int {
	return append([]int(nil), shape...)
}
