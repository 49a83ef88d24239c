package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"adda/internal/domain"
	"adda/internal/orchestrator"
)

var (
	scheduleRunOnStart bool
	scheduleShowNext   int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the whole pipeline once",
	Long: `Sync Azure DevOps projects, then Jira projects when enabled, then
export work items. The export is skipped when the DevOps sync fails. A run
report is written to runs/run_<id>.json in the blob store.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := GetApp().Orchestrator().Run(cmd.Context())
		if report != nil {
			printReport(report)
		}
		if err != nil {
			return err
		}
		if !report.Succeeded() {
			return fmt.Errorf("run %s failed", report.InstanceID)
		}
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on the configured cron schedule",
	Long: `Block and run the pipeline on the six-field cron schedule from the
configuration (seconds first, default every five minutes). A tick that
fires while a run is still going is skipped. Ctrl+C cancels the
in-flight run and waits for it to return.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if scheduleShowNext > 0 {
			next, err := orchestrator.Next(GetApp().Config.Schedule, time.Now(), scheduleShowNext)
			if err != nil {
				return err
			}
			for _, t := range next {
				fmt.Println(t.Local().Format(time.RFC1123))
			}
			return nil
		}

		scheduler, err := GetApp().Scheduler()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "scheduling %q, Ctrl+C to stop\n", GetApp().Config.Schedule)
		return scheduler.RunOnStart(scheduleRunOnStart).Run(cmd.Context())
	},
}

func printReport(report *domain.RunReport) {
	fmt.Printf("run %s\n", report.InstanceID)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, s := range report.Steps {
		detail := s.Detail
		if s.Error != "" {
			detail = s.Error
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", s.Name, s.Status, s.Duration.Round(time.Millisecond), detail)
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().BoolVar(&scheduleRunOnStart, "run-on-start", false, "run once immediately")
	scheduleCmd.Flags().IntVar(&scheduleShowNext, "next", 0, "print the next N trigger times and exit")
}
