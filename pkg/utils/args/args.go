// Package args adapts typed parsers to command line flags.
package args

import (
	"fmt"
	"os"
)

// Value is a flag.Value (and pflag.Value) holding a value of T parsed from text.
type Value[T fmt.Stringer] struct {
	value T
	parse func(string) (T, error)
	set   bool
}

// New creates a Value, which is def until it is set.
func New[T fmt.Stringer](parse func(string) (T, error), def T) *Value[T] {
	return &Value[T]{parse: parse, value: def}
}

// FromEnv sets the value from environment variable key, if it is not empty.
func (v *Value[T]) FromEnv(key string) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	if err := v.Set(s); err != nil {
		return fmt.Errorf("$%s: %w", key, err)
	}
	return nil
}

func (v *Value[T]) String() string {
	if v == nil || v.parse == nil {
		return ""
	}
	return v.value.String()
}

func (v *Value[T]) Set(s string) error {
	parsed, err := v.parse(s)
	if err != nil {
		return err
	}
	v.value = parsed
	v.set = true
	return nil
}

func (v *Value[T]) Type() string {
	return fmt.Sprintf("%T", v.value)
}

func (v *Value[T]) Get() T {
	return v.value
}

// IsSet tells whether the value has been set by Set or FromEnv.
func (v *Value[T]) IsSet() bool {
	return v.set
}
