package mal

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/google/go-querystring/query"
)

// Params is a flexible key/value parameter map for dispatch operations.
// A nil value marks a parameter as absent and drops it; zero and false
// are meaningful values and are transmitted.
type Params map[string]any

// Values serializes the map to URL query or form values. A "fields"
// entry holding a list of field names is joined into one
// comma-separated value before transmission.
func (p Params) Values() (url.Values, error) {
	out := make(url.Values)
	for k, v := range p {
		if v == nil {
			continue
		}
		if k == "fields" {
			if joined, ok := joinFields(v); ok {
				out.Set(k, joined)
				continue
			}
		}
		switch val := v.(type) {
		case bool, string, int, uint, int8, int16, int32, int64, uint8, uint16, uint32, uint64, float32, float64:
			out.Set(k, fmt.Sprint(val))
		case encoding.TextMarshaler:
			out.Set(k, fmt.Sprint(val))
		default:
			ref := reflect.ValueOf(v)
			if ref.Kind() != reflect.Slice {
				return nil, fmt.Errorf("can't serialize param %q with type %T", k, v)
			}
			for i := 0; i < ref.Len(); i++ {
				switch elem := ref.Index(i).Interface().(type) {
				case bool, string, int, uint, int8, int16, int32, int64, uint8, uint16, uint32, uint64, float32, float64:
					out.Add(k, fmt.Sprint(elem))
				case encoding.TextMarshaler:
					out.Add(k, fmt.Sprint(elem))
				default:
					return nil, fmt.Errorf("can't serialize param %q with element type %T", k, elem)
				}
			}
		}
	}
	return out, nil
}

func joinFields(v any) (string, bool) {
	fields, ok := v.([]string)
	if !ok {
		return "", false
	}
	return strings.Join(fields, ","), true
}

// queryValues normalizes the parameter forms dispatch operations
// accept: nil, Params, pre-built url.Values, or a struct with `url`
// tags encoded via go-querystring (use `url:"fields,comma"` for field
// lists).
func queryValues(params any) (url.Values, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case Params:
		return p.Values()
	case map[string]any:
		return Params(p).Values()
	case url.Values:
		return p, nil
	default:
		vals, err := query.Values(params)
		if err != nil {
			return nil, fmt.Errorf("can't serialize params of type %T: %w", params, err)
		}
		return vals, nil
	}
}
