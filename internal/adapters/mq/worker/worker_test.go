package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/bgxboard/internal/adapters/mq/queue"
	"github.com/okian/bgxboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type recordingAppender struct {
	mu     sync.Mutex
	events []model.VisitEvent
	fail   map[string]bool
}

func (a *recordingAppender) Append(_ context.Context, e model.VisitEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail[e.ID] {
		return errors.New("disk full")
	}
	a.events = append(a.events, e)
	return nil
}

func (a *recordingAppender) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

func TestPool(t *testing.T) {
	Convey("Given a pool of three workers over a queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		app := &recordingAppender{fail: map[string]bool{"v7": true}}
		pool := NewPool(3, q, app)
		So(pool.Size(), ShouldEqual, 3)
		pool.Start(ctx)

		Convey("When visits are queued and the queue is closed", func() {
			for i := 0; i < 50; i++ {
				So(q.Enqueue(ctx, model.VisitEvent{ID: fmt.Sprintf("v%d", i), Page: model.PageHome}), ShouldBeTrue)
			}
			So(q.Close(), ShouldBeNil)

			wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			Convey("Then the pool drains every visit before stopping", func() {
				So(pool.Wait(wctx), ShouldBeNil)
				So(app.len(), ShouldEqual, 49)
			})
		})
	})

	Convey("Given a pool whose context is canceled", t, func() {
		q := queue.NewInMemoryQueue()
		ctx, cancel := context.WithCancel(context.Background())
		pool := NewPool(0, q, &recordingAppender{})
		pool.Start(ctx)
		cancel()

		Convey("Then workers stop without the queue closing", func() {
			wctx, wcancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer wcancel()
			So(pool.Wait(wctx), ShouldBeNil)
			So(pool.Size(), ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given a pool that never stops", t, func() {
		q := queue.NewInMemoryQueue()
		pool := NewPool(1, q, &recordingAppender{})
		pool.Start(context.Background())

		Convey("Then Wait honours its deadline", func() {
			wctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			So(pool.Wait(wctx), ShouldNotBeNil)
			_ = q.Close()
		})
	})
}

