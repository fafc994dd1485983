package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/service"
	"github.com/jakeh134/motionflow/workflow"
)

// exportFlags holds the parsed flags for the export command.
type exportFlags struct {
	court  string
	status string
	query  string
	format string
	out    string
}

func newExportCmd(configPath *string) *cobra.Command {
	var flags exportFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a court's motions as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(*configPath, flags, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.court, "court", "", "Court id to export (required)")
	f.StringVar(&flags.status, "status", "all", "Status filter")
	f.StringVar(&flags.query, "query", "", "Case number, motion type or filer search")
	f.StringVar(&flags.format, "format", "csv", "Output format: csv or xlsx")
	f.StringVar(&flags.out, "out", "", "Write to this file; \"auto\" uses the dated export name. Defaults to stdout")
	_ = cmd.MarkFlagRequired("court")
	return cmd
}

func runExport(configPath string, flags exportFlags, stdout io.Writer) error {
	format, err := service.ParseExportFormat(flags.format)
	if err != nil {
		return codeError(3, "invalid flags: %s", err)
	}
	crit, err := workflow.NewCriteria(flags.status, flags.query)
	if err != nil {
		return codeError(3, "invalid flags: %s", err)
	}

	cfg, err := loadConfig(configPath, true)
	if err != nil {
		return codeError(2, "failed to load config: %s", err)
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	motions := a.motions.List(&model.Session{CourtID: flags.court}, crit)

	w := stdout
	if flags.out != "" {
		name := flags.out
		if name == "auto" {
			name = service.ExportFilename(format, time.Now())
		}
		file, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
		defer file.Close()
		w = file
	}

	return service.WriteExport(w, format, motions)
}
