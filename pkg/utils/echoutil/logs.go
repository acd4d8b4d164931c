// Package echoutil holds middlewares and settings shared by echo servers.
package echoutil

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// LogHandlerFunc logs each request and its response with latency, in JSON.
func LogHandlerFunc(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		req := c.Request()
		begin := time.Now()

		defer func() {
			entry := log.JSON{
				"method":  req.Method,
				"path":    req.URL.Path,
				"status":  c.Response().Status,
				"latency": time.Since(begin).String(),
			}
			if id := c.Param("id"); id != "" {
				entry["entity"] = id
			}
			if err != nil {
				entry["error"] = err.Error()
			}
			c.Logger().Infoj(entry)
		}()

		return next(c)
	}
}

var levels = map[string]log.Lvl{
	"debug": log.DEBUG,
	"info":  log.INFO,
	"warn":  log.WARN,
	"":      log.WARN,
	"error": log.ERROR,
	"off":   log.OFF,
}

// SetLevel sets the level of the echo logger by name. Unknown names fall back to warn.
func SetLevel(e *echo.Echo, loglevel string) {
	lv, ok := levels[strings.ToLower(loglevel)]
	if !ok {
		e.Logger.SetLevel(log.WARN)
		e.Logger.Warnf("unknown loglevel: %s . fall-backed to warn", loglevel)
		return
	}
	e.Logger.SetLevel(lv)
}
