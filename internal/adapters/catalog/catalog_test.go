package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/mitiplan/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const catalogYAML = `
abilities:
  - id: rampart
    name: Rampart
    cooldown: 90
    duration: 20
    target: self
    jobs: [WAR, PLD]
    forTankBusters: true
  - id: tetra
    cooldown: 60
    charges: 1
    levelCharges: {88: 2}
    jobs: [WHM]
  - id: aetherflow
    cooldown: 60
    providesStack: true
    jobs: [SCH]
  - id: lustrate
    cooldown: 1
    consumesStack: true
    jobs: [SCH]
  - id: consolation
    cooldown: 30
    jobs: [SCH]
    requiresActiveWindow: {abilityId: aetherflow, duration: 22}
stack:
  id: aetherflow
  capacity: 3
  refillInterval: 60
  providerJobId: SCH
`

const planYAML = `
level: 90
events:
  - {id: e1, time: 10, name: Raidwide}
  - {id: tb, time: 30, name: Buster, isTankBuster: true}
roster:
  tank:
    - {id: WAR, selected: true}
    - {id: PLD, selected: false}
  healer:
    - {id: SCH}
assignments:
  e1:
    - {abilityId: rampart, precastSeconds: 2}
  tb:
    - {abilityId: rampart, tankPosition: mainTank}
`

func TestParseCatalog(t *testing.T) {
	Convey("Given a catalogue document", t, func() {
		c, err := ParseCatalog([]byte(catalogYAML))

		Convey("Then abilities and the stack resource are indexed", func() {
			So(err, ShouldBeNil)
			So(c.IDs(), ShouldResemble, []string{"rampart", "tetra", "aetherflow", "lustrate", "consolation"})
			ab, ok := c.Ability("tetra")
			So(ok, ShouldBeTrue)
			So(ab.ChargesAt(90), ShouldEqual, 2)
			st, ok := c.Stack()
			So(ok, ShouldBeTrue)
			So(st.Capacity, ShouldEqual, 3)
			So(c.Consumers(), ShouldResemble, []string{"lustrate"})
		})
	})

	Convey("Given invalid catalogues", t, func() {
		for _, doc := range []string{
			"abilities:\n  - cooldown: 10\n",
			"abilities:\n  - {id: a, target: everyone}\n",
			"stack: {id: s, capacity: 1, refillInterval: 1, providerJobId: X}\n",
			"abilities:\n  - {id: a}\n  - {id: a}\n",
			"abilities:\n  - {id: a, requiresActiveWindow: {abilityId: b, duration: 5}}\n",
			"abilities:\n  - {id: a, consumesStack: true}\n",
			"abilities:\n  - {id: a, isRoleShared: true}\n",
			"abilities: [",
			"abilities:\n  - {id: a}\nstack: {id: s, capacity: 0, refillInterval: 60, providerJobId: SCH}\n",
			"abilities:\n  - {id: a, cooldown: -1}\n",
		} {
			_, err := ParseCatalog([]byte(doc))
			So(errors.Is(err, ErrInvalidCatalog), ShouldBeTrue)
		}
	})
}

func TestParsePlan(t *testing.T) {
	Convey("Given a plan using the verbose roster shape", t, func() {
		p, err := ParsePlan([]byte(planYAML))

		Convey("Then it decodes into an engine snapshot", func() {
			So(err, ShouldBeNil)
			So(p.Level, ShouldEqual, 90)
			So(p.Events, ShouldHaveLength, 2)
			So(p.Roster.IDs(), ShouldResemble, []string{"SCH", "WAR"})
			So(p.Assignments["tb"][0].TankPosition, ShouldEqual, model.PositionMainTank)

			st := p.State()
			So(st.Level, ShouldEqual, 90)
			So(st.Assignments.Count(), ShouldEqual, 2)
		})
	})

	Convey("Given a plan with a flat roster and no assignments", t, func() {
		p, err := ParsePlan([]byte("events: [{id: a, time: 1}]\nroster: [WAR, SCH]\n"))
		So(err, ShouldBeNil)
		So(p.Roster.Len(), ShouldEqual, 2)
		So(p.State().Assignments, ShouldNotBeNil)
	})

	Convey("Given invalid plans", t, func() {
		for _, doc := range []string{
			"events: [{time: 1}]\n",
			"events: [{id: a, time: -1}]\n",
			"events: [{id: a, time: 1}, {id: a, time: 2}]\n",
			"roster: [1, 2]\n",
			"assignments: {e1: [{tankPosition: mainTank}]}\n",
			"assignments: {e1: [{abilityId: a, tankPosition: both}]}\n",
		} {
			_, err := ParsePlan([]byte(doc))
			So(errors.Is(err, ErrInvalidPlan), ShouldBeTrue)
		}
	})
}

func TestLoadFiles(t *testing.T) {
	Convey("Given files on disk", t, func() {
		dir := t.TempDir()
		cat := filepath.Join(dir, "catalog.yaml")
		plan := filepath.Join(dir, "plan.yaml")
		So(os.WriteFile(cat, []byte(catalogYAML), 0o600), ShouldBeNil)
		So(os.WriteFile(plan, []byte(planYAML), 0o600), ShouldBeNil)

		Convey("Then both load", func() {
			c, err := LoadCatalog(cat)
			So(err, ShouldBeNil)
			So(c.IDs(), ShouldHaveLength, 5)
			p, err := LoadPlan(plan)
			So(err, ShouldBeNil)
			So(p.Events, ShouldHaveLength, 2)
		})

		Convey("Then missing files fail", func() {
			_, err := LoadCatalog(filepath.Join(dir, "nope.yaml"))
			So(err, ShouldNotBeNil)
			_, err = LoadPlan(filepath.Join(dir, "nope.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
