package config

import (
	"net"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Option func(options *options)

type options struct {
	withDefault  bool
	defaultValue interface{}
}

func getOptions(opts ...Option) *options {
	out := &options{}
	for _, opt := range opts {
		opt(out)
	}
	return out
}

func WithDefault(value interface{}) Option {
	return func(options *options) {
		options.withDefault = true
		options.defaultValue = value
	}
}

// GetInterface gets the given, potentially nested (dot separated), field irrespective of its type.
func GetInterface(config map[string]interface{}, field string, opts ...Option) (interface{}, error) {
	options := getOptions(opts...)

	current := config
	parts := strings.Split(field, ".")
	for i, part := range parts {
		element, ok := current[part]
		if !ok {
			if options.withDefault {
				return options.defaultValue, nil
			}
			return nil, ErrNotFound
		}
		if i == len(parts)-1 {
			return element, nil
		}
		submap, ok := element.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("%v should be a map, got: %v", strings.Join(parts[:i+1], "."), reflect.TypeOf(element))
		}
		current = submap
	}
	panic("unreachable")
}

func getTyped[T any](config map[string]interface{}, field string, opts ...Option) (T, error) {
	var zero T
	options := getOptions(opts...)

	out, err := GetInterface(config, field)
	if err != nil {
		if options.withDefault && errors.Cause(err) == ErrNotFound {
			return options.defaultValue.(T), nil
		}
		return zero, errors.Wrapf(err, "couldn't get %s", field)
	}

	typed, ok := out.(T)
	if !ok {
		return zero, errors.Errorf("expected %v for %s, got %v", reflect.TypeOf(zero), field, reflect.TypeOf(out))
	}
	return typed, nil
}

func GetString(config map[string]interface{}, field string, opts ...Option) (string, error) {
	return getTyped[string](config, field, opts...)
}

func GetInt(config map[string]interface{}, field string, opts ...Option) (int, error) {
	return getTyped[int](config, field, opts...)
}

func GetBool(config map[string]interface{}, field string, opts ...Option) (bool, error) {
	return getTyped[bool](config, field, opts...)
}

// GetFloat64 accepts integers too, as yaml decodes whole numbers into ints.
func GetFloat64(config map[string]interface{}, field string, opts ...Option) (float64, error) {
	options := getOptions(opts...)
	out, err := GetInterface(config, field)
	if err != nil {
		if options.withDefault && errors.Cause(err) == ErrNotFound {
			return options.defaultValue.(float64), nil
		}
		return 0, errors.Wrapf(err, "couldn't get %s", field)
	}

	switch out := out.(type) {
	case float64:
		return out, nil
	case int:
		return float64(out), nil
	}
	return 0, errors.Errorf("expected float64 for %s, got %v", field, reflect.TypeOf(out))
}

func GetStringList(config map[string]interface{}, field string, opts ...Option) ([]string, error) {
	options := getOptions(opts...)
	out, err := getTyped[[]interface{}](config, field)
	if err != nil {
		if options.withDefault && errors.Cause(err) == ErrNotFound {
			return options.defaultValue.([]string), nil
		}
		return nil, err
	}

	outStrings := make([]string, len(out))
	for i := range out {
		str, ok := out[i].(string)
		if !ok {
			return nil, errors.Errorf("expected string slice for %s, got %v at index %v", field, reflect.TypeOf(out[i]), i)
		}
		outStrings[i] = str
	}
	return outStrings, nil
}

// GetAddress gets a host:port address from the given field.
// The default, if any, must be given as a []interface{}{host, port}.
func GetAddress(config map[string]interface{}, field string, opts ...Option) (string, int, error) {
	options := getOptions(opts...)
	value, err := GetString(config, field)
	if err != nil {
		if options.withDefault && errors.Cause(err) == ErrNotFound {
			defaults := options.defaultValue.([]interface{})
			return defaults[0].(string), defaults[1].(int), nil
		}
		return "", 0, err
	}

	host, portText, err := net.SplitHostPort(value)
	if err != nil {
		return "", 0, errors.Wrap(err, "expected address to be in host:port form")
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		return "", 0, errors.Wrap(err, "couldn't parse port")
	}

	return host, port, nil
}
