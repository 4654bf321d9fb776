package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joescharf/bugboard/internal/dashboard"
	"github.com/joescharf/bugboard/internal/models"
	"github.com/joescharf/bugboard/internal/output"
)

var bugsSeverity string

var bugsCmd = &cobra.Command{
	Use:     "bugs",
	Aliases: []string{"ls"},
	Short:   "List the seed bugs",
	Long: `List the bugs a new dashboard session starts with.
Use --severity to apply the same filter as the dashboard buttons.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return bugsListRun(bugsSeverity)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics for the seed bugs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsRun()
	},
}

func init() {
	bugsCmd.Flags().StringVarP(&bugsSeverity, "severity", "s", "all", "Filter: all, critical, high, medium, low")
	rootCmd.AddCommand(bugsCmd)
	rootCmd.AddCommand(statsCmd)
}

func seedDashboard() (*dashboard.Dashboard, error) {
	opts, err := dashboardOptions()
	if err != nil {
		return nil, err
	}
	return dashboard.New(opts)
}

func bugsListRun(severity string) error {
	filter, err := models.ParseFilter(severity)
	if err != nil {
		return err
	}
	d, err := seedDashboard()
	if err != nil {
		return err
	}

	bugs := d.Store().FilteredBugs(filter)
	if len(bugs) == 0 {
		ui.Info("No bugs match the current filter.")
		return nil
	}

	table := ui.Table([]string{"ID", "Title", "Severity", "Status", "Created"})
	for _, b := range bugs {
		_ = table.Append([]string{
			output.Cyan(strconv.Itoa(b.ID)),
			b.Title,
			output.SeverityColor(string(b.Severity)),
			output.StatusColor(string(b.Status)),
			b.CreatedDate(),
		})
	}
	if err := table.Render(); err != nil {
		return err
	}
	ui.VerboseLog("%d of %d bugs shown (filter: %s)", len(bugs), len(d.Store().List()), filter)
	return nil
}

func statsRun() error {
	d, err := seedDashboard()
	if err != nil {
		return err
	}
	v := d.View()
	st := v.Stats

	fmt.Fprintf(ui.Out, "Environment: %s\n\n", v.Environment)
	fmt.Fprintf(ui.Out, "  %-12s %d\n", "Total", st.Total)
	fmt.Fprintf(ui.Out, "  %-12s %s\n", "Critical", output.CountColor(st.Critical))
	fmt.Fprintf(ui.Out, "  %-12s %d\n", "High", st.High)
	fmt.Fprintf(ui.Out, "  %-12s %d\n", "Medium", st.Medium)
	fmt.Fprintf(ui.Out, "  %-12s %d\n", "Low", st.Low)
	fmt.Fprintln(ui.Out)
	fmt.Fprintf(ui.Out, "  %-12s %d\n", "Open", st.Open)
	fmt.Fprintf(ui.Out, "  %-12s %d\n", "In Progress", st.InProgress)
	fmt.Fprintf(ui.Out, "  %-12s %d\n", "Closed", st.Closed)
	return nil
}
