package main

import (
	"felixrec/internal/journal"
	"felixrec/internal/models"
	"felixrec/internal/providers"
	"felixrec/internal/structures"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

const errorColumnWidth = 60

func newJournalCommand(flags *structures.CliFlags) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the recording journal",
	}

	journalCmd.AddCommand(newJournalListCommand(flags))
	journalCmd.AddCommand(newJournalArchiveCommand(flags))
	return journalCmd
}

func newJournalListCommand(flags *structures.CliFlags) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !models.JobStatus(status).Valid() {
				return fmt.Errorf("unknown status %q", status)
			}

			conf, err := providers.LoadConfig(flags)
			if err != nil {
				return err
			}
			data, err := journal.ReadFile(filepath.Join(conf.Recorder.DataDir, journal.FileName))
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}

			entries := make([]models.JournalEntry, 0, len(data.Entries))
			for _, entry := range data.Entries {
				if status == "" || entry.Status == models.JobStatus(status) {
					entries = append(entries, *entry)
				}
			}
			journal.SortEntries(entries)

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, entryRow(e, e.UpdatedAt))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(entryHeaders("UPDATED"), rows, 5))
			fmt.Fprintf(out, "%d entries\n", len(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show entries in this status")
	return cmd
}

func newJournalArchiveCommand(flags *structures.CliFlags) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Show pruned entries archived for a month, or list archived months",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := providers.LoadConfig(flags)
			if err != nil {
				return err
			}

			compressor, err := journal.NewZstdCompressor()
			if err != nil {
				return err
			}
			defer compressor.Close()
			archive := journal.NewArchive(conf, compressor, providers.NewConsoleLogProvider(conf, cmd.ErrOrStderr()))

			out := cmd.OutOrStdout()
			if month == "" {
				months, err := archive.Months()
				if err != nil {
					return err
				}
				if len(months) == 0 {
					fmt.Fprintf(out, "No archives in %s\n", archive.Dir())
					return nil
				}
				for _, m := range months {
					fmt.Fprintln(out, m)
				}
				return nil
			}

			archived, err := archive.ReadMonth(month)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(archived))
			for _, a := range archived {
				rows = append(rows, entryRow(a.JournalEntry, a.ArchivedAt))
			}
			fmt.Fprintln(out, renderTable(entryHeaders("ARCHIVED"), rows, 5))
			fmt.Fprintf(out, "%d archived entries in %s\n", len(archived), month)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to show, YYYY-MM")
	return cmd
}

func entryHeaders(timeColumn string) []string {
	return []string{"KEY", "STATUS", "PROGRAM", "RECORDING", "RETRIES", timeColumn, "ERROR"}
}

func entryRow(e models.JournalEntry, at time.Time) []string {
	recording := "-"
	if e.HasRecordingID() {
		recording = strconv.FormatInt(*e.RecordingID, 10)
	}
	return []string{
		e.Key,
		string(e.Status),
		e.Schedule.ProgramName,
		recording,
		strconv.Itoa(e.RetryCount),
		at.Format(time.DateTime),
		truncate(e.ErrorMessage, errorColumnWidth),
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
