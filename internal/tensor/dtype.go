// Package tensor provides the dense tensor value type and the numeric
// backend contract for the diffqc core.
package tensor

// DataType is the runtime precision tag of a tensor.
type DataType int

// Supported precisions. All linear-algebra kernels operate in Float64;
// Float32 exists for bulk data (grids, cached basis values) that is promoted
// before entering a kernel.
const (
	Float64 DataType = iota
	Float32
)

// Size returns the byte size of one element.
func (dt DataType) Size() int {
	switch dt {
	case Float64:
		return 8
	case Float32:
		return 4
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	default:
		return "unknown"
	}
}
