package echoutil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/musecrm/museflow/pkg/utils/echoutil"
)

func TestSetLevel(t *testing.T) {
	for name, expected := range map[string]log.Lvl{
		"debug":   log.DEBUG,
		"INFO":    log.INFO,
		"warn":    log.WARN,
		"":        log.WARN,
		"error":   log.ERROR,
		"off":     log.OFF,
		"verbose": log.WARN,
	} {
		t.Run("loglevel="+name, func(t *testing.T) {
			e := echo.New()
			echoutil.SetLevel(e, name)
			if actual := e.Logger.Level(); actual != expected {
				t.Errorf("actual=%v, expect=%v", actual, expected)
			}
		})
	}
}

func TestLogHandlerFunc(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	c := e.NewContext(req, resp)

	called := false
	err := echoutil.LogHandlerFunc(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusNoContent)
	})(c)
	if err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("next handler is not called")
	}
	if resp.Code != http.StatusNoContent {
		t.Errorf("status: actual=%d, expect=%d", resp.Code, http.StatusNoContent)
	}
}
