package sqlite

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	msqlite "modernc.org/sqlite"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// cosineDistanceFunc is the SQL name of the registered distance function.
const cosineDistanceFunc = "vec_cosine_distance"

var (
	registerOnce sync.Once
	registerErr  error
)

// registerFunctions installs the vector SQL functions on the driver.
// Registration is process-wide and must happen before connections open.
func registerFunctions() error {
	registerOnce.Do(func() {
		registerErr = msqlite.RegisterDeterministicScalarFunction(cosineDistanceFunc, 2, cosineDistanceSQL)
	})
	return registerErr
}

// cosineDistanceSQL implements vec_cosine_distance(blob, blob).
// NULL input yields NULL.
func cosineDistanceSQL(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, ok, err := blobArg(args[0])
	if err != nil || !ok {
		return nil, err
	}
	b, ok, err := blobArg(args[1])
	if err != nil || !ok {
		return nil, err
	}

	return domain.CosineDistance(bytesToFloat32Slice(a), bytesToFloat32Slice(b))
}

// blobArg extracts a BLOB argument. The bool is false for NULL.
func blobArg(v driver.Value) ([]byte, bool, error) {
	switch val := v.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		if len(val)%4 != 0 {
			return nil, false, fmt.Errorf("%s: blob length %d is not a multiple of 4", cosineDistanceFunc, len(val))
		}
		return val, true, nil
	default:
		return nil, false, fmt.Errorf("%s: expected blob, got %T", cosineDistanceFunc, v)
	}
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
