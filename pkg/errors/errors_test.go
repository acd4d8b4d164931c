package errors_test

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	xe "github.com/musecrm/museflow/pkg/errors"
)

type MyErr struct{}

func (MyErr) Error() string {
	return "error type for test"
}

func createError(message string) error {
	return xe.New(message)
}

func blame(err error) error {
	return xe.WrapAsOuter(err, 1)
}

func TestNewError(t *testing.T) {
	t.Run("it knows location where it is created.", func(t *testing.T) {
		testee := createError("test error")
		errMessage := testee.Error()

		_, thisFile, _, _ := runtime.Caller(0)

		if !strings.Contains(errMessage, "createError") {
			t.Errorf("it does not know function name: %s", errMessage)
		}

		if !strings.Contains(errMessage, thisFile) {
			t.Errorf("it does not know file (%s): %s", thisFile, errMessage)
		}
	})

	t.Run("it supports errors protocol", func(t *testing.T) {
		rootError := MyErr{}

		err := xe.Wrap(fmt.Errorf("%w", fmt.Errorf("%w", rootError)))

		if !errors.Is(err, rootError) {
			t.Error("it does not support unwrapping.")
		}
	})

	t.Run("Errorf honours %w", func(t *testing.T) {
		rootError := MyErr{}
		err := xe.Errorf("step %s: %w", "InvalidateCache", rootError)

		if !errors.Is(err, rootError) {
			t.Error("it does not support unwrapping.")
		}
		if !strings.Contains(err.Error(), "step InvalidateCache") {
			t.Errorf("message is lost: %s", err.Error())
		}
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		if err := xe.Wrap(nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if err := xe.WrapWithNote("note", nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("note is shown", func(t *testing.T) {
		err := xe.WrapWithNote("while releasing lock", MyErr{})
		if !strings.Contains(err.Error(), "(while releasing lock)") {
			t.Errorf("note is not shown: %s", err.Error())
		}
	})

	t.Run("WrapAsOuter blames the caller of the helper", func(t *testing.T) {
		err := blame(MyErr{})

		ewc := new(xe.ErrWithCaller)
		if !errors.As(err, &ewc) {
			t.Fatalf("not ErrWithCaller: %#v", err)
		}
		if !strings.HasSuffix(ewc.Func(), "TestWrap.func3") {
			t.Errorf("unexpected function: %s", ewc.Func())
		}
	})
}
