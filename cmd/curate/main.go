package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"molcure/adapters/api"
	"molcure/adapters/postgres"
	reportadapter "molcure/adapters/report"
	"molcure/curation"
	"molcure/domain/dataset"
	"molcure/domain/report"
	"molcure/internal"
	"molcure/internal/config"
	tableio "molcure/internal/dataset"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "curate",
		Short: "Run configurable curation workflows over chemistry datasets",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newValidateCmd(),
		newActionsCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var datasetPath string
	var outPath string
	var reportPath string
	var save bool

	cmd := &cobra.Command{
		Use:   "run [workflow.json]",
		Short: "Execute a curation workflow and write the curated dataset and report",
		Long: `Execute the curation workflow described by a JSON document.

The dataset comes from --dataset if given, otherwise from the workflow's
src_dataset_path. The curated dataset is written as CSV and the report as a
standalone HTML document.

Example: curate run workflow.json --dataset raw.csv --out curated.csv --report report.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd.Context(), args[0], datasetPath, outPath, reportPath, save)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Dataset file (csv or xlsx); overrides the workflow's src_dataset_path")
	cmd.Flags().StringVar(&outPath, "out", "curated.csv", "Output path for the curated dataset")
	cmd.Flags().StringVar(&reportPath, "report", "", "Output path for the HTML report (default: alongside --out)")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the workflow and run report to PostgreSQL (requires DATABASE_URL)")

	return cmd
}

func runWorkflow(ctx context.Context, workflowPath, datasetPath, outPath, reportPath string, save bool) error {
	curator, err := curation.FromJSON(workflowPath)
	if err != nil {
		return err
	}

	table, err := loadDatasetArg(datasetPath)
	if err != nil {
		return err
	}

	curated, rep, err := curator.Transform(table)
	if err != nil {
		return fmt.Errorf("curation failed: %w", err)
	}

	if err := tableio.WriteCSV(curated, outPath); err != nil {
		return fmt.Errorf("writing curated dataset: %w", err)
	}
	fmt.Printf("Curated dataset written to %s (%d rows, %d columns)\n", outPath, curated.NumRows(), len(curated.Columns()))

	if reportPath == "" {
		base := outPath[:len(outPath)-len(filepath.Ext(outPath))]
		reportPath = base + "_report.html"
	}
	reportFile, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer reportFile.Close()
	if err := reportadapter.NewHTMLBroadcaster(reportFile).Broadcast(rep); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	fmt.Printf("Report written to %s (%d sections)\n", reportPath, len(rep.Sections))

	if err := reportadapter.NewLoggerBroadcaster(curator.Logger()).Broadcast(rep); err != nil {
		return err
	}

	if save {
		return persistRun(ctx, workflowPath, curator, rep)
	}
	return nil
}

func loadDatasetArg(path string) (*dataset.Table, error) {
	if path == "" {
		return nil, nil
	}
	return tableio.LoadTable(path)
}

func persistRun(ctx context.Context, workflowPath string, curator *curation.Curator, rep *report.Report) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("--save requires DATABASE_URL to be set")
	}

	db, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("preparing schema: %w", err)
	}

	repo := postgres.NewWorkflowRepository(db)
	document, err := json.Marshal(curator)
	if err != nil {
		return err
	}
	name := filepath.Base(workflowPath)
	workflowID, err := repo.SaveWorkflow(ctx, name, document)
	if err != nil {
		return fmt.Errorf("saving workflow: %w", err)
	}

	reportJSON, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	if err := repo.SaveRun(ctx, workflowID, rep.RunID, reportJSON); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	fmt.Printf("Workflow saved as %s\n", workflowID)
	return nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [workflow.json]",
		Short: "Check a workflow document without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			curator, err := curation.FromJSON(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Workflow OK: %d steps\n", len(curator.Steps))
			for i, step := range curator.Steps {
				fmt.Printf("%d. %s\n", i+1, step.Name())
			}
			return nil
		},
	}
}

func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the available curation actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range curation.ActionNames() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve stored workflows and rendered reports over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("serve requires DATABASE_URL to be set")
			}

			ctx := cmd.Context()
			db, err := postgres.Connect(ctx, cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer db.Close()

			if err := postgres.EnsureSchema(ctx, db); err != nil {
				return fmt.Errorf("preparing schema: %w", err)
			}

			logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
			server := api.NewServer(postgres.NewWorkflowRepository(db), logger)
			return server.ListenAndServe(cfg.Server.Port)
		},
	}
}
