package visualizer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/tkarimi/residual/internal/adapters/errorlog"
	"github.com/tkarimi/residual/internal/adapters/render"
	"github.com/tkarimi/residual/internal/app/visualizer"
	"github.com/tkarimi/residual/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// fakePlotter records render calls.
type fakePlotter struct {
	mu     sync.Mutex
	calls  int
	values []float64
	fail   bool
}

func (f *fakePlotter) Render(values []float64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("render exploded")
	}
	f.calls++
	f.values = values
	return nil
}

func TestTick(t *testing.T) {
	Convey("Given a visualizer over a real log file", t, func() {
		So(logger.Init(), ShouldBeNil)
		ctx := context.Background()
		dir := t.TempDir()
		logPath := filepath.Join(dir, "metric_log.csv")
		plotPath := filepath.Join(dir, "error_distribution.png")

		plotter := &fakePlotter{}
		svc := visualizer.New(errorlog.NewReader(logPath), plotter, plotPath)

		Convey("When the log does not exist yet", func() {
			err := svc.Tick(ctx)

			Convey("Then the tick should succeed without rendering", func() {
				So(err, ShouldBeNil)
				So(plotter.calls, ShouldEqual, 0)
			})
		})

		Convey("When the log is empty", func() {
			So(os.WriteFile(logPath, nil, 0o640), ShouldBeNil)

			err := svc.Tick(ctx)

			Convey("Then the tick should succeed without rendering", func() {
				So(err, ShouldBeNil)
				So(plotter.calls, ShouldEqual, 0)
			})
		})

		Convey("When the log has records", func() {
			content := "1,42.0,40.5,1.5\n2,17.0,20.0,3.0\n"
			So(os.WriteFile(logPath, []byte(content), 0o640), ShouldBeNil)

			err := svc.Tick(ctx)

			Convey("Then the plotter should receive the error column", func() {
				So(err, ShouldBeNil)
				So(plotter.calls, ShouldEqual, 1)
				So(plotter.values, ShouldResemble, []float64{1.5, 3.0})
			})

			Convey("And a second tick should recompute from scratch", func() {
				So(err, ShouldBeNil)
				more := content + "3,5.0,4.0,1.0\n"
				So(os.WriteFile(logPath, []byte(more), 0o640), ShouldBeNil)

				So(svc.Tick(ctx), ShouldBeNil)
				So(plotter.values, ShouldResemble, []float64{1.5, 3.0, 1.0})
			})
		})

		Convey("When the render fails", func() {
			So(os.WriteFile(logPath, []byte("1,2.0,1.0,1.0\n"), 0o640), ShouldBeNil)
			plotter.fail = true

			err := svc.Tick(ctx)

			Convey("Then the error should surface for the loop to log", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestTickWithRealRenderer(t *testing.T) {
	Convey("Given a visualizer wired to the real renderer", t, func() {
		So(logger.Init(), ShouldBeNil)
		ctx := context.Background()
		dir := t.TempDir()
		logPath := filepath.Join(dir, "metric_log.csv")
		plotPath := filepath.Join(dir, "error_distribution.png")

		content := "1,42.0,40.5,1.5\n2,17.0,20.0,3.0\n3,8.0,8.2,0.2\n"
		So(os.WriteFile(logPath, []byte(content), 0o640), ShouldBeNil)

		svc := visualizer.New(errorlog.NewReader(logPath), render.NewRenderer(), plotPath)

		Convey("When a tick runs", func() {
			err := svc.Tick(ctx)

			Convey("Then a PNG should be written", func() {
				So(err, ShouldBeNil)
				info, statErr := os.Stat(plotPath)
				So(statErr, ShouldBeNil)
				So(info.Size(), ShouldBeGreaterThan, 0)
			})
		})
	})
}
