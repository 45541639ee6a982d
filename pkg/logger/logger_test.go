package logger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tkarimi/residual/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given the logger package", t, func() {
		Convey("When initializing the global logger", func() {
			err := logger.Init()

			Convey("Then it should succeed and Get should return a logger", func() {
				So(err, ShouldBeNil)
				So(logger.Get(), ShouldNotBeNil)
			})
		})

		Convey("When logging at each level", func() {
			So(logger.Init(), ShouldBeNil)
			l := logger.Get()
			ctx := context.Background()

			Convey("Then no call should panic", func() {
				So(func() {
					l.Debug(ctx, "debug message", logger.String("k", "v"))
					l.Info(ctx, "info message", logger.Int("n", 1))
					l.Warn(ctx, "warn message", logger.Float64("f", 1.5))
					l.Error(ctx, "error message", logger.Error(errors.New("boom")))
				}, ShouldNotPanic)
			})
		})

		Convey("When creating a named logger", func() {
			So(logger.Init(), ShouldBeNil)
			named := logger.Named("correlator")

			Convey("Then it should be distinct and usable", func() {
				So(named, ShouldNotBeNil)
				So(func() {
					named.Info(context.Background(), "named message")
				}, ShouldNotPanic)
			})
		})

		Convey("When setting the level from a string", func() {
			So(logger.Init(), ShouldBeNil)

			Convey("Then known names should parse", func() {
				So(logger.SetLevelString("debug"), ShouldBeNil)
				So(logger.SetLevelString("info"), ShouldBeNil)
				So(logger.SetLevelString("WARN"), ShouldBeNil)
				So(logger.SetLevelString("warning"), ShouldBeNil)
				So(logger.SetLevelString("error"), ShouldBeNil)
				So(logger.SetLevelString(""), ShouldBeNil)
			})

			Convey("And unknown names should error", func() {
				So(logger.SetLevelString("verbose"), ShouldNotBeNil)
			})
		})

		Convey("When syncing", func() {
			So(logger.Init(), ShouldBeNil)

			Convey("Then Sync should not fail", func() {
				So(logger.Sync(), ShouldBeNil)
			})
		})
	})
}
