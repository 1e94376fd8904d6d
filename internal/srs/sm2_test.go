package srs_test

import (
	"testing"

	"github.com/example/drillbot/internal/srs"
	. "github.com/smartystreets/goconvey/convey"
)

func TestComputeNextInterval(t *testing.T) {
	Convey("Given the SM-2 scheduler", t, func() {
		Convey("When the rating is a failure (quality < 3)", func() {
			for q := 0; q <= 2; q++ {
				interval, ease, err := srs.ComputeNextInterval(q, 14, 2.1)
				So(err, ShouldBeNil)
				So(interval, ShouldEqual, 1)
				So(ease, ShouldEqual, 2.1)
			}
		})

		Convey("When rating a brand new item perfectly", func() {
			interval, ease, err := srs.ComputeNextInterval(5, 0, 2.5)
			So(err, ShouldBeNil)
			So(interval, ShouldEqual, 1)
			So(ease, ShouldEqual, 2.6)

			Convey("Then the second success jumps to six days", func() {
				interval2, _, err := srs.ComputeNextInterval(5, interval, ease)
				So(err, ShouldBeNil)
				So(interval2, ShouldEqual, 6)
			})
		})

		Convey("When the interval is mature the formula multiplies by ease", func() {
			interval, _, err := srs.ComputeNextInterval(4, 10, 2.5)
			So(err, ShouldBeNil)
			So(interval, ShouldEqual, 25)
		})

		Convey("When the product lands on a half it rounds away from zero", func() {
			// 3 * 2.5 = 7.5 -> 8, not banker's 7 or truncated 7.
			interval, _, err := srs.ComputeNextInterval(5, 3, 2.5)
			So(err, ShouldBeNil)
			So(interval, ShouldEqual, 8)
		})

		Convey("When the ease would drop below the floor it is clamped", func() {
			// Quality 3 subtracts 0.14 each time.
			_, ease, err := srs.ComputeNextInterval(3, 6, 1.35)
			So(err, ShouldBeNil)
			So(ease, ShouldEqual, 1.3)

			Convey("And the floor holds for every passing quality", func() {
				for q := 3; q <= 5; q++ {
					_, ease, err := srs.ComputeNextInterval(q, 6, 1.3)
					So(err, ShouldBeNil)
					So(ease, ShouldBeGreaterThanOrEqualTo, 1.3)
				}
			})
		})

		Convey("Successive successes never shrink a mature interval", func() {
			interval, ease := 6, 1.3
			for i := 0; i < 20; i++ {
				next, nextEase, err := srs.ComputeNextInterval(3, interval, ease)
				So(err, ShouldBeNil)
				So(next, ShouldBeGreaterThanOrEqualTo, interval)
				interval, ease = next, nextEase
			}
		})

		Convey("When the quality is out of range", func() {
			for _, q := range []int{-1, 6, 42} {
				_, _, err := srs.ComputeNextInterval(q, 0, 2.5)
				So(err, ShouldWrap, srs.ErrInvalidQuality)
			}
		})
	})
}
