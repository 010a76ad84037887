package artifact

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// encodeNPY 生成 npy v1.0 字节流，values 按 fortran 参数指定的顺序排列。
func encodeNPY(t *testing.T, dtype string, fortran bool, rows, cols int, values []float64) []byte {
	t.Helper()
	order := "False"
	if fortran {
		order = "True"
	}
	dict := fmt.Sprintf("{'descr': '%s', 'fortran_order': %s, 'shape': (%d, %d), }", dtype, order, rows, cols)
	// magic(6) + version(2) + len(2) + header，总长按 64 字节对齐，以换行结尾
	total := 10 + len(dict) + 1
	pad := (64 - total%64) % 64
	header := dict + strings.Repeat(" ", pad) + "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY")
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	for _, v := range values {
		switch dtype {
		case "<f4":
			_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(float32(v)))
		default:
			_ = binary.Write(&buf, binary.LittleEndian, math.Float64bits(v))
		}
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("写入 %s 失败: %v", name, err)
	}
	return path
}

// writeFixtures 在 dir 中写入一套最小的产物文件。
func writeFixtures(t *testing.T, dir string) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Dir = dir
	writeFile(t, dir, cfg.MetadataFile, []byte(`{
		"1": {"name": "A", "price": "120000", "ocop_rating": 4, "category": "Trà", "origin": "Hà Giang"},
		"2": {"name": "B", "price": 50000, "sold": 7},
		"3": {"name": "C", "image_url": "/c.png"}
	}`))
	writeFile(t, dir, cfg.PrecomputedFile, []byte(`{"1": ["2", 3, "999"], "2": []}`))
	writeFile(t, dir, cfg.IndexFile, []byte(`{"1": 0, "2": 1, "3": "2"}`))
	writeFile(t, dir, cfg.MatrixFile, encodeNPY(t, "<f8", false, 3, 3, []float64{
		1, 0.5, 0.2,
		0.5, 1, 0.3,
		0.2, 0.3, 1,
	}))
	writeFile(t, dir, cfg.TableFile, []byte("product_id,name,price,sold,isActive\n1,A,120000,3,True\n2,B,,7,False\n3,C,90000,,\n"))
	return cfg
}
