package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/mitiplan/internal/adapters/catalog"
	"github.com/okian/mitiplan/internal/domain/cooldown"
	"github.com/okian/mitiplan/internal/domain/model"
	"github.com/okian/mitiplan/pkg/logger"
)

// checkReport is the JSON written by the check command.
type checkReport struct {
	Time    float64           `json:"time"`
	Event   string            `json:"event,omitempty"`
	Level   int               `json:"level"`
	Results []cooldown.Result `json:"results"`
}

type checkFlags struct {
	catalogPath string
	planPath    string
	at          float64
	eventID     string
	caster      string
	position    string
	level       int
}

func newCheckCmd() *cobra.Command {
	var f checkFlags
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Print the availability of every ability at one point of a plan",
		Long: `check loads a catalogue and a plan and prints a JSON report with the
availability of every catalogue ability at --time. With --event the report
applies the already-assigned rule for that event and, unless --time is given,
uses the event's time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.catalogPath, "catalog", "catalog.yaml", "ability catalogue file")
	cmd.Flags().StringVar(&f.planPath, "plan", "", "encounter plan file")
	cmd.Flags().Float64Var(&f.at, "time", 0, "seconds since pull")
	cmd.Flags().StringVar(&f.eventID, "event", "", "event id to check against")
	cmd.Flags().StringVar(&f.caster, "caster", "", "restrict role-shared abilities to one job")
	cmd.Flags().StringVar(&f.position, "position", "", "tank position: shared, mainTank or offTank")
	cmd.Flags().IntVar(&f.level, "level", 0, "encounter level override")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func runCheck(cmd *cobra.Command, f checkFlags) error {
	ctx := cmd.Context()
	cat, err := catalog.LoadCatalog(f.catalogPath)
	if err != nil {
		return err
	}
	plan, err := catalog.LoadPlan(f.planPath)
	if err != nil {
		return err
	}
	q := cooldown.Query{CasterJobID: f.caster, TankPosition: model.TankPosition(f.position)}
	if !q.TankPosition.Valid() {
		return fmt.Errorf("unknown tank position %q", f.position)
	}

	st := plan.State()
	if f.level > 0 {
		st.Level = f.level
	}
	m := cooldown.NewManager(cat, cooldown.WithLogger(logger.New(logger.WithOutput(cmd.ErrOrStderr()))))
	m.SetState(ctx, st)

	at := f.at
	if f.eventID != "" {
		ev, ok := m.Event(f.eventID)
		if !ok {
			return fmt.Errorf("unknown event %q", f.eventID)
		}
		if !cmd.Flags().Changed("time") {
			at = ev.Time
		}
	}

	report := checkReport{Time: at, Event: f.eventID, Level: m.Level()}
	for _, id := range cat.IDs() {
		report.Results = append(report.Results, m.CheckAvailability(id, at, f.eventID, q))
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
