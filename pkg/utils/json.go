package utils

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var ErrNilValue = errors.New("nil value")

// UnmarshalJson converts a loosely decoded payload (usually map[string]any)
// into T by going through its JSON form. A nil payload is an error, not a
// zero T.
func UnmarshalJson[T any](v any) (T, error) {
	var result T
	if v == nil {
		return result, ErrNilValue
	}
	data, err := jsoniter.Marshal(v)
	if err != nil {
		return result, errors.WithMessage(err, "marshal json")
	}
	if err := jsoniter.Unmarshal(data, &result); err != nil {
		return result, errors.WithMessagef(err, "unmarshal json into %T", result)
	}
	return result, nil
}
