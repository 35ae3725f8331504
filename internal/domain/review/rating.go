package review

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
)

// Rating is a star rating as sent by clients. Integral JSON numbers such as
// 5 and 5.0 decode; fractions, strings and booleans are type errors.
type Rating int

func (r *Rating) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &json.UnmarshalTypeError{Value: typeErr.Value, Type: reflect.TypeOf(0)}
		}
		return err
	}

	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return &json.UnmarshalTypeError{Value: "number " + string(data), Type: reflect.TypeOf(0)}
	}

	*r = Rating(f)
	return nil
}
