package playerv1

import (
	"encoding/json"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Enums use the protobuf JSON mapping: the value name on output, the name or
// the number on input.

func enumName(names map[int32]string, v int32) string {
	if name, ok := names[v]; ok {
		return name
	}
	return strconv.Itoa(int(v))
}

func marshalEnum(names map[int32]string, v int32) ([]byte, error) {
	if name, ok := names[v]; ok {
		return json.Marshal(name)
	}
	return json.Marshal(v)
}

func unmarshalEnum(values map[string]int32, data []byte) (int32, error) {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		v, ok := values[name]
		if !ok {
			return 0, errors.Newf("unknown enum value %q", name)
		}
		return v, nil
	}

	var v int32
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, errors.Wrap(err, "invalid enum value")
	}
	return v, nil
}
