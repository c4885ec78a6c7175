package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/mitiplan/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given an empty memory store", t, func() {
		n := 0
		s := NewMemoryStore(
			WithClock(func() time.Time { return fixed }),
			WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		)

		Convey("Then it starts at version zero", func() {
			snap := s.Snapshot(ctx)
			So(snap.Version, ShouldEqual, 0)
			So(snap.Assignments, ShouldBeEmpty)
			So(s.Count(ctx), ShouldEqual, 0)
		})

		Convey("When an assignment is added", func() {
			written, snap, err := s.Add(ctx, "e1", model.Assignment{AbilityID: "rampart"})

			Convey("Then it is stamped and published", func() {
				So(err, ShouldBeNil)
				So(written.ID, ShouldEqual, "id-1")
				So(written.UpdatedAt, ShouldEqual, fixed)
				So(snap.Version, ShouldEqual, 1)
				So(snap.Assignments["e1"], ShouldHaveLength, 1)
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then earlier snapshots are not affected by later writes", func() {
				_, _, err = s.Add(ctx, "e1", model.Assignment{AbilityID: "reprisal"})
				So(err, ShouldBeNil)
				So(snap.Assignments["e1"], ShouldHaveLength, 1)
				So(s.Snapshot(ctx).Assignments["e1"], ShouldHaveLength, 2)
			})

			Convey("Then it can be removed by id", func() {
				snap, err := s.RemoveID(ctx, "e1", written.ID)
				So(err, ShouldBeNil)
				So(snap.Version, ShouldEqual, 2)
				So(snap.Assignments, ShouldBeEmpty)
			})

			Convey("Then it can be removed by slot", func() {
				_, err := s.Remove(ctx, "e1", model.Slot{AbilityID: "rampart"})
				So(err, ShouldBeNil)
				So(s.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When removing something absent", func() {
			snap, err := s.Remove(ctx, "e1", model.Slot{AbilityID: "rampart"})

			Convey("Then ErrNotFound is returned and the version is unchanged", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(snap.Version, ShouldEqual, 0)
			})
		})

		Convey("When adding without an event", func() {
			_, _, err := s.Add(ctx, "", model.Assignment{AbilityID: "rampart"})
			So(errors.Is(err, ErrInvalidEvent), ShouldBeTrue)
		})

		Convey("When replacing the whole map", func() {
			src := model.Assignments{"e2": {{AbilityID: "feint"}}}
			snap, err := s.Replace(ctx, src)
			src.Add("e2", model.Assignment{AbilityID: "addle"})

			Convey("Then the store holds a copy", func() {
				So(err, ShouldBeNil)
				So(snap.Assignments["e2"], ShouldHaveLength, 1)
				So(s.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When closed", func() {
			So(s.Close(), ShouldBeNil)
			_, _, err := s.Add(ctx, "e1", model.Assignment{AbilityID: "rampart"})

			Convey("Then writes fail and reads still work", func() {
				So(errors.Is(err, ErrClosed), ShouldBeTrue)
				So(s.Snapshot(ctx).Version, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a seeded store", t, func() {
		s := NewMemoryStore(WithInitial(model.Assignments{"e1": {{AbilityID: "rampart", ID: "a"}}}))
		So(s.Count(ctx), ShouldEqual, 1)

		Convey("When many editors write concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, _, _ = s.Add(ctx, fmt.Sprintf("e%d", i%5), model.Assignment{AbilityID: "feint"})
				}(i)
			}
			wg.Wait()

			Convey("Then every write lands exactly once", func() {
				snap := s.Snapshot(ctx)
				So(snap.Version, ShouldEqual, 50)
				So(snap.Assignments.Count(), ShouldEqual, 51)
			})
		})
	})
}
