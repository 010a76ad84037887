package artifact

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/sbinet/npyio/npy"
	"gonum.org/v1/gonum/mat"
)

// LoadMatrix 读取 .npy 格式的二维浮点矩阵（f8 或 f4，C 或 Fortran 顺序）。
func LoadMatrix(path string) (*mat.Dense, error) {
	data, err := readFile("similarity matrix", path)
	if err != nil {
		return nil, err
	}
	m, err := DecodeMatrix(bytes.NewReader(data))
	if err != nil {
		return nil, invalid("similarity matrix", path, err)
	}
	return m, nil
}

// DecodeMatrix 从 npy 流解码矩阵。
func DecodeMatrix(r io.Reader) (*mat.Dense, error) {
	nr, err := npy.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("read npy header: %w", err)
	}
	shape := nr.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, fmt.Errorf("expected a 2-D array, got shape %v", shape)
	}
	rows, cols := shape[0], shape[1]
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("empty matrix with shape %v", shape)
	}

	var values []float64
	switch dtype := strings.TrimLeft(nr.Header.Descr.Type, "<>|="); dtype {
	case "f8":
		if err := nr.Read(&values); err != nil {
			return nil, fmt.Errorf("read npy data: %w", err)
		}
	case "f4":
		var f32 []float32
		if err := nr.Read(&f32); err != nil {
			return nil, fmt.Errorf("read npy data: %w", err)
		}
		values = make([]float64, len(f32))
		for i, v := range f32 {
			values[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("unsupported dtype %q", nr.Header.Descr.Type)
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("expected %d values for shape %v, got %d", rows*cols, shape, len(values))
	}

	if !nr.Header.Descr.Fortran {
		return mat.NewDense(rows, cols, values), nil
	}
	// Fortran 顺序按列存储，先按转置读入再拷贝成行主序
	colMajor := mat.NewDense(cols, rows, values)
	var m mat.Dense
	m.CloneFrom(colMajor.T())
	return &m, nil
}
