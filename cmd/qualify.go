package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ecr-group/leadqual-cli/internal/ingest"
	"github.com/ecr-group/leadqual-cli/internal/model"
)

var (
	qualifyFile     string
	qualifyOut      string
	qualifyDispatch bool
)

var qualifyCmd = &cobra.Command{
	Use:   "qualify [domain...]",
	Short: "Qualify leads for one or more company domains",
	Long:  "Fetches contacts for each domain, applies the admission rules, composes outreach messages, and writes the export artifacts. Domains come from the arguments, from --file, or both.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		domains := append([]string(nil), args...)
		if qualifyFile != "" {
			fromFile, err := ingest.ReadDomains(qualifyFile)
			if err != nil {
				return eris.Wrap(err, "read domains file")
			}
			domains = append(domains, fromFile...)
		}
		if len(domains) == 0 {
			return eris.New("no domains given: pass them as arguments or via --file")
		}

		env, err := initPipeline(ctx, qualifyDispatch)
		if err != nil {
			return err
		}
		defer env.Close()

		run, err := env.Pipeline.Run(ctx, domains)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		if err := writeArtifacts(qualifyOut, run); err != nil {
			return err
		}

		if run.Empty() {
			zap.L().Warn("no qualified leads", zap.Strings("domains", run.Domains))
		}

		if qualifyDispatch {
			report := env.Pipeline.Dispatch(ctx, run)
			zap.L().Info("dispatch complete", zap.String("sent", report.Summary()))
		}

		zap.L().Info("qualification complete",
			zap.String("run", run.ID),
			zap.Int("domains", len(run.Domains)),
			zap.Int("leads", len(run.Leads)),
			zap.Int("errors", len(run.Errors)),
			zap.String("status", string(run.Status)),
		)

		for _, derr := range run.Errors {
			zap.L().Warn("domain failed",
				zap.String("domain", derr.Domain),
				zap.String("detail", derr.Detail),
			)
		}

		return nil
	},
}

// artifactFiles maps run artifact keys to output file names.
var artifactFiles = map[string]string{
	model.ArtifactXLSX:   model.ZipEntryXLSX,
	model.ArtifactCSV:    model.ZipEntryCSV,
	model.ArtifactCRMCSV: "crm_leads.csv",
	model.ArtifactZIP:    "leads_bundle.zip",
}

// writeArtifacts writes every run artifact into dir.
func writeArtifacts(dir string, run *model.PipelineRun) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "create output dir")
	}
	for key, name := range artifactFiles {
		data, ok := run.Artifacts[key]
		if !ok {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", name)
		}
		zap.L().Info("artifact written", zap.String("path", path), zap.Int("bytes", len(data)))
	}
	return nil
}

func init() {
	qualifyCmd.Flags().StringVar(&qualifyFile, "file", "", "domains file (.xlsx, .csv, or plain text)")
	qualifyCmd.Flags().StringVar(&qualifyOut, "out", ".", "output directory for export artifacts")
	qualifyCmd.Flags().BoolVar(&qualifyDispatch, "dispatch", false, "send qualified leads to the configured CRM target")
	rootCmd.AddCommand(qualifyCmd)
}
