package try_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/musecrm/museflow/pkg/utils/try"
)

type fakeFataler struct {
	got []any
}

func (f *fakeFataler) Fatal(v ...any) {
	f.got = append(f.got, v...)
}

func TestEither(t *testing.T) {
	fakeErr := errors.New("fake")

	t.Run("ok Either returns its value", func(t *testing.T) {
		ftl := &fakeFataler{}
		if actual := try.To(3, nil).OrFatal(ftl); actual != 3 {
			t.Errorf("actual=%d, expect=%d", actual, 3)
		}
		if len(ftl.got) != 0 {
			t.Errorf("Fatal is called: %v", ftl.got)
		}
		if actual := try.To(3, nil).OrDefault(5); actual != 3 {
			t.Errorf("actual=%d, expect=%d", actual, 3)
		}
	})

	t.Run("no good Either calls Fatal with its error", func(t *testing.T) {
		ftl := &fakeFataler{}
		if actual := try.To(3, fakeErr).OrFatal(ftl); actual != 0 {
			t.Errorf("actual=%d, expect=%d", actual, 0)
		}
		if len(ftl.got) != 1 || ftl.got[0] != fakeErr {
			t.Errorf("Fatal: actual=%v, expect=%v", ftl.got, fakeErr)
		}
		if actual := try.To(3, fakeErr).OrDefault(5); actual != 5 {
			t.Errorf("actual=%d, expect=%d", actual, 5)
		}
	})

	t.Run("Map converts only ok values", func(t *testing.T) {
		toString := func(i int) string { return fmt.Sprint(i) }

		if v, err := try.Map(try.To(3, nil), toString).Get(); err != nil || v != "3" {
			t.Errorf("actual=(%q, %v), expect=(%q, nil)", v, err, "3")
		}
		if _, err := try.Map(try.To(3, fakeErr), toString).Get(); !errors.Is(err, fakeErr) {
			t.Errorf("err: actual=%v, expect=%v", err, fakeErr)
		}
	})
}
