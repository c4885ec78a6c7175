package charges_test

import (
	"testing"

	"github.com/okian/mitiplan/internal/domain/charges"
	"github.com/okian/mitiplan/internal/domain/usage"
	. "github.com/smartystreets/goconvey/convey"
)

func uses(times ...float64) []usage.Record {
	out := make([]usage.Record, len(times))
	for i, t := range times {
		out[i] = usage.Record{AbilityID: "tetra", Time: t}
	}
	return out
}

func TestEvaluate(t *testing.T) {
	Convey("Given a 3-charge ability with a 1s cooldown", t, func() {
		Convey("When it was never used", func() {
			st := charges.Evaluate(nil, 100, 1, 3)

			Convey("Then every charge is available", func() {
				So(st.Available, ShouldEqual, 3)
				So(st.Total, ShouldEqual, 3)
				So(st.HasNext, ShouldBeFalse)
			})
		})

		Convey("When it was used once at 10, 30 and 50", func() {
			h := uses(10, 30, 50)

			Convey("Then only the latest use still holds a charge at 50.5", func() {
				st := charges.Evaluate(h, 50.5, 1, 3)
				So(st.Available, ShouldEqual, 2)
				So(st.NextRecovery, ShouldEqual, 51)
			})

			Convey("Then every charge is back once the last cooldown lapses", func() {
				So(charges.Evaluate(h, 51, 1, 3).Available, ShouldEqual, 3)
			})

			Convey("Then between uses every charge is available", func() {
				So(charges.Evaluate(h, 49.9, 1, 3).Available, ShouldEqual, 3)
			})
		})

		Convey("When it was used three times within half a second from 10", func() {
			h := uses(10, 10.05, 10.1)

			Convey("Then no charge is left at 10.4", func() {
				st := charges.Evaluate(h, 10.4, 1, 3)
				So(st.Available, ShouldEqual, 0)
				So(st.HasNext, ShouldBeTrue)
				So(st.NextRecovery, ShouldEqual, 11)
			})

			Convey("Then all charges are back at 11.1", func() {
				So(charges.Evaluate(h, 11.1, 1, 3).Available, ShouldEqual, 3)
			})

			Convey("Then future uses do not count", func() {
				So(charges.Evaluate(h, 10.02, 1, 3).Available, ShouldEqual, 2)
			})
		})
	})

	Convey("Given more uses than charges", t, func() {
		h := uses(0, 1, 2, 3, 4)

		Convey("Then only the most recent window is inspected", func() {
			st := charges.Evaluate(h, 4, 120, 2)
			So(st.Available, ShouldEqual, 0)
			So(st.NextRecovery, ShouldEqual, 123)
		})

		Convey("Then available charges stay within bounds", func() {
			for _, at := range []float64{0, 2, 4, 60, 200} {
				st := charges.Evaluate(h, at, 120, 2)
				So(st.Available, ShouldBeBetweenOrEqual, 0, st.Total)
			}
		})
	})

	Convey("Given a non-positive charge count", t, func() {
		st := charges.Evaluate(uses(5), 6, 10, 0)
		So(st.Total, ShouldEqual, 1)
		So(st.Available, ShouldEqual, 0)
	})
}
