package middleware

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// RequestCounter counts every response by status code.
func RequestCounter(requests *prometheus.CounterVec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			code := c.Response().Status
			if err != nil {
				// the error handler has not written yet
				code = http.StatusInternalServerError
				if he, ok := err.(*echo.HTTPError); ok {
					code = he.Code
				}
			}
			requests.WithLabelValues(strconv.Itoa(code)).Inc()
			return err
		}
	}
}
