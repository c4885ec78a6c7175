package cooldown_test

import (
	"context"

	"github.com/okian/mitiplan/internal/domain/cooldown"
	"github.com/okian/mitiplan/internal/domain/model"
	"github.com/okian/mitiplan/internal/domain/roster"
)

func testCatalog() *model.Catalog {
	return model.NewCatalog([]model.Ability{
		{ID: "rampart", Cooldown: 90, Duration: 20, Target: model.TargetSelf, ForTankBusters: true, Jobs: []string{"WAR", "PLD"}},
		{ID: "reprisal", Cooldown: 60, Duration: 15, Target: model.TargetParty, IsRoleShared: true, ForRaidWide: true, Jobs: []string{"WAR", "PLD"}},
		{ID: "shirk", Cooldown: 120, Target: model.TargetSingle, IsRoleShared: true, ForTankBusters: true, Jobs: []string{"WAR", "PLD"}},
		{ID: "tetra", Cooldown: 1, Charges: 3, Target: model.TargetSingle, Jobs: []string{"WHM"}},
		{ID: "oblation", Cooldown: 60, Charges: 2, Duration: 10, Target: model.TargetSingle, ForTankBusters: true, Jobs: []string{"DRK"}},
		{ID: "holmgang", Cooldown: 240, SharedCooldownGroup: "panic", Jobs: []string{"WAR"}},
		{ID: "vengeance", Cooldown: 120, SharedCooldownGroup: "panic", Jobs: []string{"WAR"}},
		{ID: "summon", Cooldown: 120, Duration: 22, Jobs: []string{"SCH"}},
		{ID: "consolation", Cooldown: 30, Jobs: []string{"SCH"}, RequiresActiveWindow: &model.Window{AbilityID: "summon", Duration: 22}},
		{ID: "aetherflow", Cooldown: 60, ProvidesStack: true, Jobs: []string{"SCH"}},
		{ID: "lustrate", Cooldown: 1, ConsumesStack: true, Jobs: []string{"SCH"}},
		{ID: "indom", Cooldown: 30, ConsumesStack: true, ForRaidWide: true, Jobs: []string{"SCH"}},
		{ID: "sacred_soil", Cooldown: 30, ForRaidWide: true, Jobs: []string{"SCH"}, LevelCooldowns: map[int]float64{50: 45, 90: 30}},
	}, &model.StackResource{ID: "aetherflow", Capacity: 3, RefillInterval: 60, ProviderJobID: "SCH"})
}

func testEvents() []model.Event {
	return []model.Event{
		{ID: "e5", Time: 5, Name: "Pull"},
		{ID: "e6", Time: 6, Name: "Auto"},
		{ID: "e7", Time: 7, Name: "Auto"},
		{ID: "e10", Time: 10, Name: "Raidwide"},
		{ID: "tb30", Time: 30, Name: "Buster", IsTankBuster: true},
		{ID: "e50", Time: 50, Name: "Cleave"},
		{ID: "e100", Time: 100, Name: "Enrage"},
	}
}

func newManager(as model.Assignments, jobs ...string) *cooldown.Manager {
	if len(jobs) == 0 {
		jobs = []string{"WAR", "PLD", "WHM", "DRK", "SCH"}
	}
	m := cooldown.NewManager(testCatalog())
	m.SetState(context.Background(), cooldown.State{
		Events:      testEvents(),
		Assignments: as,
		Roster:      roster.FromIDs(jobs...),
		Level:       100,
	})
	return m
}
