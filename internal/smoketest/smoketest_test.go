package smoketest

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tkarimi/residual/internal/domain/model"
)

func TestVerify(t *testing.T) {
	expected := []ExpectedPair{
		{ID: "a", GroundTruth: 42, Prediction: 40.5, AbsoluteError: 1.5},
		{ID: "b", GroundTruth: 17, Prediction: 20, AbsoluteError: 3},
	}
	records := []model.ErrorRecord{
		{ID: "a", GroundTruth: 42, Prediction: 40.5, AbsoluteError: 1.5},
		{ID: "b", GroundTruth: 17, Prediction: 20, AbsoluteError: 3},
	}

	Convey("Given a log matching every expected pair", t, func() {
		Convey("verification passes", func() {
			So(Verify(records, expected), ShouldBeNil)
		})

		Convey("extra unrelated records are ignored", func() {
			extra := append(records, model.ErrorRecord{ID: "stray", AbsoluteError: 9})
			So(Verify(extra, expected), ShouldBeNil)
		})
	})

	Convey("Given an incomplete or wrong log", t, func() {
		Convey("a missing record is reported", func() {
			err := Verify(records[:1], expected)
			So(errors.Is(err, ErrRecordMissing), ShouldBeTrue)
		})

		Convey("a duplicated record is reported", func() {
			dup := append(records, records[0])
			err := Verify(dup, expected)
			So(errors.Is(err, ErrDuplicateRecord), ShouldBeTrue)
		})

		Convey("a mismatched absolute error is reported", func() {
			bad := []model.ErrorRecord{
				{ID: "a", GroundTruth: 42, Prediction: 40.5, AbsoluteError: 2.5},
				records[1],
			}
			err := Verify(bad, expected)
			So(errors.Is(err, ErrWrongError), ShouldBeTrue)
		})
	})
}
