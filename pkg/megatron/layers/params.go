package layers

import "github.com/pkg/errors"

// YAML round-trips numbers as int or float64 depending on their lexical
// form; these helpers coerce artifact params back to what a layer expects.

func paramInt(params map[string]any, key string) (int, error) {
	raw, ok := params[key]
	if !ok {
		return 0, errors.Wrapf(ErrBadParams, "missing %q", key)
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.Wrapf(ErrBadParams, "%q is not a number", key)
	}
}

func paramBool(params map[string]any, key string) (bool, error) {
	raw, ok := params[key]
	if !ok {
		return false, errors.Wrapf(ErrBadParams, "missing %q", key)
	}
	v, ok := raw.(bool)
	if !ok {
		return false, errors.Wrapf(ErrBadParams, "%q is not a bool", key)
	}

	return v, nil
}

func paramFloats(params map[string]any, key string) ([]float64, error) {
	raw, ok := params[key]
	if !ok {
		return nil, errors.Wrapf(ErrBadParams, "missing %q", key)
	}
	switch v := raw.(type) {
	case []float64:
		out := make([]float64, len(v))
		copy(out, v)

		return out, nil
	case []int:
		out := make([]float64, len(v))
		for i, item := range v {
			out[i] = float64(item)
		}

		return out, nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, errors.Wrapf(ErrBadParams, "%q is not a list", key)
	}

	out := make([]float64, len(list))
	for i, item := range list {
		switch v := item.(type) {
		case float64:
			out[i] = v
		case int:
			out[i] = float64(v)
		case int64:
			out[i] = float64(v)
		default:
			return nil, errors.Wrapf(ErrBadParams, "%q holds a non-number at %d", key, i)
		}
	}

	return out, nil
}

func paramInts(params map[string]any, key string) ([]int, error) {
	floats, err := paramFloats(params, key)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(floats))
	for i, v := range floats {
		out[i] = int(v)
	}

	return out, nil
}
