package matrix

import (
	"fmt"
	"strings"

	"github.com/edp1096/netsolver/internal/consts"
	"github.com/edp1096/netsolver/internal/numeric"
)

// Dense is a square row-major matrix whose rows are padded to a multiple of
// MATRIX_ALIGN elements.
type Dense struct {
	n      int
	stride int
	data   []float64
}

func NewDense(n int) *Dense {
	if n < 0 {
		panic(fmt.Sprintf("matrix: negative dimension %d", n))
	}
	stride := numeric.AlignUp(n, consts.MATRIX_ALIGN)
	return &Dense{
		n:      n,
		stride: stride,
		data:   make([]float64, n*stride),
	}
}

func (d *Dense) Size() int   { return d.n }
func (d *Dense) Stride() int { return d.stride }

// Row returns row i without padding. It aliases the matrix storage.
func (d *Dense) Row(i int) []float64 {
	off := i * d.stride
	return d.data[off : off+d.n : off+d.stride]
}

func (d *Dense) At(i, j int) float64 {
	return d.data[i*d.stride+j]
}

func (d *Dense) Set(i, j int, v float64) {
	d.data[i*d.stride+j] = v
}

func (d *Dense) Add(i, j int, v float64) {
	d.data[i*d.stride+j] += v
}

func (d *Dense) Zero() {
	clear(d.data)
}

func (d *Dense) Identity() {
	d.Zero()
	for i := 0; i < d.n; i++ {
		d.data[i*d.stride+i] = 1.0
	}
}

func (d *Dense) CopyFrom(src *Dense) {
	if src.n != d.n {
		panic(fmt.Sprintf("matrix: copy dimension mismatch %d != %d", src.n, d.n))
	}
	copy(d.data, src.data)
}

// SwapRows exchanges rows i and j from column from onward.
func (d *Dense) SwapRows(i, j, from int) {
	if i == j {
		return
	}
	ri, rj := d.Row(i), d.Row(j)
	for k := from; k < d.n; k++ {
		ri[k], rj[k] = rj[k], ri[k]
	}
}

// MulVec computes dst = d * x.
func (d *Dense) MulVec(dst, x []float64) {
	for i := 0; i < d.n; i++ {
		row := d.Row(i)
		tmp := 0.0
		for j, a := range row {
			tmp += a * x[j]
		}
		dst[i] = tmp
	}
}

func (d *Dense) String() string {
	var sb strings.Builder
	for i := 0; i < d.n; i++ {
		for _, v := range d.Row(i) {
			fmt.Fprintf(&sb, "%10.4g ", v)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
