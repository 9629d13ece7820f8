package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jmehdipour/segment-reports/internal/model"
	"github.com/jmehdipour/segment-reports/internal/util"
	echo "github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// latestSegmentsHandler returns the labels the Redis sink stored for a report.
func latestSegmentsHandler(rdb redis.Cmdable, prefix string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if rdb == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "redis sink disabled"})
		}
		report := model.ReportKind(c.Param("report"))
		if !report.Valid() {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown report"})
		}

		ctx := c.Request().Context()
		base := prefix + report.String()
		runID, err := rdb.Get(ctx, base+":run").Result()
		if errors.Is(err, redis.Nil) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no run stored"})
		}
		if err != nil {
			c.Logger().Errorf("redis get run failed: %v", err)

			return c.JSON(http.StatusBadGateway, map[string]string{"error": "redis unavailable"})
		}

		raw, err := rdb.HGetAll(ctx, base+":latest").Result()
		if err != nil {
			c.Logger().Errorf("redis hgetall failed: %v", err)

			return c.JSON(http.StatusBadGateway, map[string]string{"error": "redis unavailable"})
		}
		return c.JSON(http.StatusOK, summarize(report, runID, raw))
	}
}

// summarize turns the stored customer→cluster hash into the API body.
// Values that are not integers are skipped.
func summarize(report model.ReportKind, runID string, raw map[string]string) map[string]any {
	labels := make(map[string]int, len(raw))
	sizes := map[int]int{}
	for id, v := range raw {
		k, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		labels[id] = k
		sizes[k]++
	}

	body := map[string]any{
		"report":      report,
		"run_id":      runID,
		"customers":   len(labels),
		"sizes":       sizes,
		"assignments": labels,
	}
	if started, err := util.RunTime(runID); err == nil {
		body["run_started"] = started.UTC()
	}
	return body
}
