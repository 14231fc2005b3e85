package database

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Scalar reduces a driver-native value to one of the scalar kinds carried by
// RawResult: nil, string, int64, float64, bool or time.Time.
func Scalar(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case bool:
		return x
	case int64:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint:
		return unsignedScalar(uint64(x))
	case uint64:
		return unsignedScalar(x)
	case float64:
		return x
	case float32:
		return float64(x)
	case time.Time:
		return x
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case uuid.UUID:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

func unsignedScalar(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}
