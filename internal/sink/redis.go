package sink

import (
	"context"
	"strconv"
	"time"

	"github.com/jmehdipour/segment-reports/internal/model"
	"github.com/redis/go-redis/v9"
)

// Redis keeps the latest label per customer for each report:
//
//	<prefix><report>:latest  hash customer_id -> cluster
//	<prefix><report>:run     run id that produced the hash
type Redis struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedis(rdb redis.Cmdable, prefix string, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) LatestKey(report model.ReportKind) string {
	return r.prefix + report.String() + ":latest"
}

func (r *Redis) RunKey(report model.ReportKind) string {
	return r.prefix + report.String() + ":run"
}

// Publish replaces the latest hash atomically so readers never see two runs mixed.
func (r *Redis) Publish(ctx context.Context, events []model.AssignmentEvent) error {
	if len(events) == 0 {
		return nil
	}
	report := events[0].Report
	latest, run := r.LatestKey(report), r.RunKey(report)
	fields := latestFields(events)

	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, latest)
		p.HSet(ctx, latest, fields)
		p.Set(ctx, run, events[0].RunID, r.ttl)
		if r.ttl > 0 {
			p.Expire(ctx, latest, r.ttl)
		}
		return nil
	})
	return err
}

func latestFields(events []model.AssignmentEvent) map[string]any {
	out := make(map[string]any, len(events))
	for _, e := range events {
		out[strconv.FormatInt(e.CustomerID, 10)] = e.Cluster
	}
	return out
}
