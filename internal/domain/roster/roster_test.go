package roster_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/mitiplan/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given the supported roster shapes", t, func() {
		Convey("When the roster is a flat id list", func() {
			var s roster.Selection
			err := json.Unmarshal([]byte(`["WAR","SCH"," "]`), &s)

			Convey("Then every non-blank id is selected", func() {
				So(err, ShouldBeNil)
				So(s.IDs(), ShouldResemble, []string{"SCH", "WAR"})
			})
		})

		Convey("When the roster groups ids per role", func() {
			var s roster.Selection
			err := json.Unmarshal([]byte(`{"tank":["WAR","PLD"],"healer":["SCH"]}`), &s)

			Convey("Then roles are flattened", func() {
				So(err, ShouldBeNil)
				So(s.IDs(), ShouldResemble, []string{"PLD", "SCH", "WAR"})
			})
		})

		Convey("When the roster uses the verbose per-job shape", func() {
			var s roster.Selection
			err := json.Unmarshal([]byte(`{
				"tank": [
					{"id":"WAR","name":"Warrior","selected":true},
					{"id":"GNB","name":"Gunbreaker","selected":false}
				],
				"healer": [{"id":"SCH","name":"Scholar"}]
			}`), &s)

			Convey("Then only selected jobs are kept", func() {
				So(err, ShouldBeNil)
				So(s.Has("WAR"), ShouldBeTrue)
				So(s.Has("GNB"), ShouldBeFalse)
				So(s.Has("SCH"), ShouldBeTrue)
				So(s.Len(), ShouldEqual, 2)
			})
		})

		Convey("When both shapes describe the same jobs", func() {
			var flat, verbose roster.Selection
			So(json.Unmarshal([]byte(`["WAR"]`), &flat), ShouldBeNil)
			So(json.Unmarshal([]byte(`{"tank":[{"id":"WAR","selected":true}]}`), &verbose), ShouldBeNil)

			Convey("Then the selections are equal", func() {
				So(flat.Equal(verbose), ShouldBeTrue)
			})
		})

		Convey("When the roster holds an unexpected value", func() {
			var s roster.Selection
			err := json.Unmarshal([]byte(`{"tank":[42]}`), &s)

			Convey("Then an invalid shape error is returned", func() {
				So(errors.Is(err, roster.ErrInvalidShape), ShouldBeTrue)
			})
		})

		Convey("When a selected flag is not a boolean", func() {
			_, err := roster.Normalize([]any{map[string]any{"id": "WAR", "selected": "yes"}})
			So(errors.Is(err, roster.ErrInvalidShape), ShouldBeTrue)
		})
	})
}

func TestSelectionJSON(t *testing.T) {
	Convey("Given a selection", t, func() {
		s := roster.FromIDs("WAR", "AST")

		Convey("Then it marshals to the canonical id list", func() {
			data, err := json.Marshal(s)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `["AST","WAR"]`)
		})

		Convey("Then the zero value selects nothing", func() {
			var zero roster.Selection
			So(zero.Has("WAR"), ShouldBeFalse)
			So(zero.Len(), ShouldEqual, 0)
		})
	})
}
