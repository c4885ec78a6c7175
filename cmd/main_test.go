package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/mitiplan/internal/config"
	"github.com/okian/mitiplan/internal/domain/cooldown"
	"github.com/okian/mitiplan/pkg/logger"
)

const testCatalog = `
abilities:
  - {id: rampart, cooldown: 90, duration: 20, target: self, jobs: [WAR]}
  - {id: reprisal, cooldown: 60, duration: 15, isRoleShared: true, jobs: [WAR, PLD]}
  - {id: tetra, cooldown: 60, charges: 2, jobs: [WHM]}
`

const testPlan = `
events:
  - {id: e10, time: 10, name: Raidwide}
  - {id: e40, time: 40, name: Buster, isTankBuster: true}
roster: [WAR, PLD, WHM]
assignments:
  e10:
    - {abilityId: rampart}
    - {abilityId: tetra}
`

func writeFiles(t *testing.T) (string, string) {
	dir := t.TempDir()
	cat := filepath.Join(dir, "catalog.yaml")
	plan := filepath.Join(dir, "plan.yaml")
	if err := os.WriteFile(cat, []byte(testCatalog), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(plan, []byte(testPlan), 0o600); err != nil {
		t.Fatal(err)
	}
	return cat, plan
}

func runRoot(args ...string) (string, error) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	convey.Convey("Given a catalogue and a plan on disk", t, func() {
		cat, plan := writeFiles(t)

		convey.Convey("When checking a point in time", func() {
			out, err := runRoot("check", "--catalog", cat, "--plan", plan, "--time", "50")

			convey.Convey("Then every ability is reported", func() {
				convey.So(err, convey.ShouldBeNil)
				var report checkReport
				convey.So(json.Unmarshal([]byte(out), &report), convey.ShouldBeNil)
				convey.So(report.Time, convey.ShouldEqual, 50)
				convey.So(report.Level, convey.ShouldEqual, 100)
				convey.So(report.Results, convey.ShouldHaveLength, 3)
				convey.So(report.Results[0].Reason, convey.ShouldEqual, cooldown.ReasonOnCooldown)
				convey.So(report.Results[1].AvailableInstances, convey.ShouldEqual, 2)
				convey.So(report.Results[2].AvailableCharges, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When checking against an event without a time", func() {
			out, err := runRoot("check", "--catalog", cat, "--plan", plan, "--event", "e40", "--level", "90")

			convey.Convey("Then the event time is used", func() {
				convey.So(err, convey.ShouldBeNil)
				var report checkReport
				convey.So(json.Unmarshal([]byte(out), &report), convey.ShouldBeNil)
				convey.So(report.Time, convey.ShouldEqual, 40)
				convey.So(report.Event, convey.ShouldEqual, "e40")
				convey.So(report.Level, convey.ShouldEqual, 90)
			})
		})

		convey.Convey("When the input is wrong", func() {
			_, err := runRoot("check", "--catalog", cat, "--plan", plan, "--event", "missing")
			convey.So(err, convey.ShouldNotBeNil)

			_, err = runRoot("check", "--catalog", cat, "--plan", plan, "--position", "left")
			convey.So(err, convey.ShouldNotBeNil)

			_, err = runRoot("check", "--catalog", cat)
			convey.So(err, convey.ShouldNotBeNil)

			_, err = runRoot("check", "--catalog", filepath.Join(t.TempDir(), "none.yaml"), "--plan", plan)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestServeWiring(t *testing.T) {
	convey.Convey("Given a config pointing at a catalogue and a plan", t, func() {
		cat, plan := writeFiles(t)
		cfg := config.New(context.Background())
		cfg.CatalogPath = cat
		cfg.PlanPath = plan
		cfg.Level = 90

		svc, err := newService(cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		ctx := context.Background()
		mux := newMux(ctx, svc, logger.Nop())

		convey.Convey("Then the session is seeded from the plan", func() {
			stats := svc.GetStats(ctx)
			convey.So(stats["assignments"], convey.ShouldEqual, 2)
			convey.So(stats["level"], convey.ShouldEqual, 90)
			convey.So(stats["editorId"], convey.ShouldEqual, cfg.EditorID)
		})

		convey.Convey("Then the API routes are served", func() {
			for _, target := range []string{"/healthz", "/stats", "/pending", "/openapi.yaml", "/availability?ability=rampart&time=5"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then a mitigation can be added through the mux", func() {
			w := httptest.NewRecorder()
			body := strings.NewReader(`{"event":"e40","ability":"reprisal","caster":"PLD"}`)
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mitigations", body))
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
			convey.So(svc.GetStats(ctx)["assignments"], convey.ShouldEqual, 3)
		})

		convey.Convey("Then a missing catalogue is an error", func() {
			cfg.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
			_, err := newService(cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)
	})
}
