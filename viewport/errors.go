package viewport

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// MatrixError is returned when the pixel projection matrix of a viewport is
// not invertible. The viewport can not be used; construct a new one with
// different parameters.
type MatrixError struct {
	Matrix      mgl64.Mat4
	Determinant float64
}

func (e *MatrixError) Error() string {
	return fmt.Sprintf("pixel project matrix not invertible (determinant %v)", e.Determinant)
}

// IsMatrixError reports whether err was caused by a MatrixError.
func IsMatrixError(err error) bool {
	_, ok := errors.Cause(err).(*MatrixError)
	return ok
}

// invert returns the inverse of m or a MatrixError.
func invert(m mgl64.Mat4) (mgl64.Mat4, error) {
	det := m.Det()
	if det == 0 || !isFinite(det) {
		return mgl64.Mat4{}, errors.WithStack(&MatrixError{Matrix: m, Determinant: det})
	}
	inv := m.Inv()
	if inv == (mgl64.Mat4{}) {
		// Inv gives up on determinants close to zero
		return mgl64.Mat4{}, errors.WithStack(&MatrixError{Matrix: m, Determinant: det})
	}
	return inv, nil
}
