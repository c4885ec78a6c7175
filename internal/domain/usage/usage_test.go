package usage_test

import (
	"testing"

	"github.com/okian/mitiplan/internal/domain/model"
	"github.com/okian/mitiplan/internal/domain/usage"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolve(t *testing.T) {
	Convey("Given a timeline and assignments", t, func() {
		tl := model.NewTimeline([]model.Event{
			{ID: "e3", Time: 50, Name: "Cleave"},
			{ID: "e1", Time: 2, Name: "Opener"},
			{ID: "e2", Time: 30, Name: "Buster", IsTankBuster: true},
		})
		as := model.Assignments{
			"e1":    {{AbilityID: "reprisal", PrecastSeconds: 5}},
			"e2":    {{AbilityID: "reprisal", TankPosition: model.PositionMainTank}, {AbilityID: "rampart"}},
			"e3":    {{AbilityID: "reprisal", PrecastSeconds: 25}},
			"ghost": {{AbilityID: "reprisal"}},
		}

		records := usage.Resolve("reprisal", as, tl)

		Convey("Then only matching assignments on known events are returned", func() {
			So(records, ShouldHaveLength, 3)
		})

		Convey("Then records are sorted by effective time", func() {
			So(records[0].EventID, ShouldEqual, "e1")
			So(records[1].EventID, ShouldEqual, "e3")
			So(records[2].EventID, ShouldEqual, "e2")
		})

		Convey("Then effective time is clamped to the timeline start", func() {
			So(records[0].Time, ShouldEqual, 0)
			So(records[1].Time, ShouldEqual, 25)
		})

		Convey("Then every effective time lies within [0, event time]", func() {
			for _, r := range records {
				So(r.Time, ShouldBeGreaterThanOrEqualTo, 0)
				So(r.Time, ShouldBeLessThanOrEqualTo, r.EventTime)
			}
		})

		Convey("Then a negative precast is treated as zero", func() {
			as["e2"][0].PrecastSeconds = -4
			rs := usage.Resolve("reprisal", as, tl)
			So(rs[2].Time, ShouldEqual, 30)
			So(rs[2].TankPosition, ShouldEqual, model.PositionMainTank)
		})
	})
}

func TestSlicing(t *testing.T) {
	Convey("Given a sorted history", t, func() {
		h := []usage.Record{{Time: 10}, {Time: 20}, {Time: 20}, {Time: 40}}

		Convey("Then Before includes records at the boundary", func() {
			So(usage.Before(h, 20), ShouldHaveLength, 3)
			So(usage.Before(h, 5), ShouldHaveLength, 0)
		})

		Convey("Then Last returns the latest prior record", func() {
			r, ok := usage.Last(h, 39)
			So(ok, ShouldBeTrue)
			So(r.Time, ShouldEqual, 20)
			_, ok = usage.Last(h, 1)
			So(ok, ShouldBeFalse)
		})

		Convey("Then Merge interleaves histories by time", func() {
			m := usage.Merge([]usage.Record{{Time: 1}, {Time: 9}}, []usage.Record{{Time: 5}})
			So(m[0].Time, ShouldEqual, 1)
			So(m[1].Time, ShouldEqual, 5)
			So(m[2].Time, ShouldEqual, 9)
		})
	})
}
