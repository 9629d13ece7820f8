package sink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmehdipour/segment-reports/internal/model"
	. "github.com/smartystreets/goconvey/convey"
)

type flaky struct {
	failures int
	calls    int
}

func (f *flaky) Name() string { return "flaky" }
func (f *flaky) Publish(context.Context, []model.AssignmentEvent) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("transient")
	}
	return nil
}

func TestRetrying(t *testing.T) {
	Convey("Given a sink that fails twice", t, func() {
		inner := &flaky{failures: 2}
		r := NewRetrying(inner, RetryConfig{Attempts: 3, BreakerThreshold: 5, BreakerOpenFor: time.Minute})

		Convey("Then the third attempt succeeds", func() {
			So(r.Publish(context.Background(), events()), ShouldBeNil)
			So(inner.calls, ShouldEqual, 3)
			So(r.Name(), ShouldEqual, "flaky")
		})
	})

	Convey("Given a sink that never recovers", t, func() {
		inner := &flaky{failures: 100}
		r := NewRetrying(inner, RetryConfig{Attempts: 2, BreakerThreshold: 2, BreakerOpenFor: time.Minute})

		err := r.Publish(context.Background(), events())

		Convey("Then the last error is returned and the breaker opens", func() {
			So(err, ShouldNotBeNil)
			So(inner.calls, ShouldEqual, 2)
			So(r.breaker.Open(), ShouldBeTrue)
		})

		Convey("And later publishes are rejected without calling the sink", func() {
			err := r.Publish(context.Background(), events())
			So(errors.Is(err, ErrBreakerOpen), ShouldBeTrue)
			So(inner.calls, ShouldEqual, 2)
		})
	})

	Convey("Given a cancelled context between attempts", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := NewRetrying(&flaky{failures: 100}, RetryConfig{Attempts: 3, Backoff: time.Hour})

		So(errors.Is(r.Publish(ctx, events()), context.Canceled), ShouldBeTrue)
	})
}

func TestBreakerHalfOpen(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker(1, time.Second)
	b.now = func() time.Time { return now }

	b.OnFailure()
	if b.TryAcquire() {
		t.Fatal("open breaker admitted a call before the cool-down")
	}

	now = now.Add(2 * time.Second)
	if !b.TryAcquire() {
		t.Fatal("expected a probe after the cool-down")
	}
	if b.TryAcquire() {
		t.Fatal("only one probe may be in flight")
	}

	b.OnSuccess()
	if b.Open() || !b.TryAcquire() {
		t.Fatal("a successful probe should close the breaker")
	}
}
