package ident_test

import (
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/tkarimi/residual/internal/domain/ident"
	. "github.com/smartystreets/goconvey/convey"
)

func TestUUIDMinter(t *testing.T) {
	Convey("Given the UUID minter", t, func() {
		m := ident.NewUUID()

		Convey("When minting many ids", func() {
			seen := make(map[string]bool)
			for i := 0; i < 1000; i++ {
				seen[m.Next()] = true
			}

			Convey("Then all ids should be distinct", func() {
				So(len(seen), ShouldEqual, 1000)
			})
		})
	})
}

func TestCounterMinter(t *testing.T) {
	Convey("Given the counter minter", t, func() {
		m := ident.NewCounter("prod-a")

		Convey("When minting sequentially", func() {
			first := m.Next()
			second := m.Next()

			Convey("Then ids should carry the tag and increase", func() {
				So(first, ShouldEqual, "prod-a-1")
				So(second, ShouldEqual, "prod-a-2")
			})
		})

		Convey("When minting concurrently", func() {
			var mu sync.Mutex
			seen := make(map[string]bool)
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						id := m.Next()
						mu.Lock()
						seen[id] = true
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then no id should repeat", func() {
				So(len(seen), ShouldEqual, 800)
			})
		})

		Convey("When two producers carry different tags", func() {
			a := ident.NewCounter("a").Next()
			b := ident.NewCounter("b").Next()

			So(a, ShouldNotEqual, b)
		})
	})
}

func TestWallclockMinter(t *testing.T) {
	Convey("Given the legacy wallclock minter", t, func() {
		m := ident.NewWallclock()

		Convey("When minting an id", func() {
			id := m.Next()

			Convey("Then it should be a decimal with microsecond precision", func() {
				So(strings.Count(id, "."), ShouldEqual, 1)
				frac := id[strings.Index(id, ".")+1:]
				So(len(frac), ShouldEqual, 6)
				_, err := strconv.ParseFloat(id, 64)
				So(err, ShouldBeNil)
			})
		})
	})
}
