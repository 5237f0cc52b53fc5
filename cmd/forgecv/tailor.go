package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/forgecv/internal/config"
	"github.com/jonathan/forgecv/internal/llm"
	"github.com/jonathan/forgecv/internal/observability"
	"github.com/jonathan/forgecv/internal/poller"
	"github.com/jonathan/forgecv/internal/schemas"
	"github.com/jonathan/forgecv/internal/tailor"
	"github.com/jonathan/forgecv/internal/types"
)

var (
	tailorConfigPath string
	tailorResumePath string
	tailorJobPath    string
	tailorMasterPath string
	tailorOutputPath string
	tailorVerbose    bool
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Tailor a resume to a job description in one shot",
	Long: `Runs a tailoring job locally: the same durable two-step runner the
server uses, against an in-process store, polled to completion.`,
	RunE: runTailor,
}

func init() {
	tailorCmd.Flags().StringVar(&tailorConfigPath, "config", "", "Path to config.json file")
	tailorCmd.Flags().StringVarP(&tailorResumePath, "resume", "r", "", "Path to resume JSON file (required)")
	tailorCmd.Flags().StringVarP(&tailorJobPath, "job", "j", "", "Path to job description text file (required)")
	tailorCmd.Flags().StringVarP(&tailorMasterPath, "master", "m", "", "Path to master profile JSON file (optional)")
	tailorCmd.Flags().StringVarP(&tailorOutputPath, "output", "o", "", "Write the tailored result JSON here (default stdout)")
	tailorCmd.Flags().BoolVarP(&tailorVerbose, "verbose", "v", false, "Print a human-readable summary of the changes")
	_ = tailorCmd.MarkFlagRequired("resume")
	_ = tailorCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(tailorCmd)
}

func runTailor(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(tailorConfigPath)
	if err != nil {
		return err
	}
	// The flag can force verbose on; config enables it for every run.
	verbose := tailorVerbose || cfg.Verbose

	resume, err := readResumeFile(tailorResumePath)
	if err != nil {
		return err
	}
	if err := schemas.ValidateResume(resume); err != nil {
		return err
	}

	jobText, err := os.ReadFile(tailorJobPath)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	var master *types.ResumeDocument
	if tailorMasterPath != "" {
		master, err = readResumeFile(tailorMasterPath)
		if err != nil {
			return err
		}
	}

	ctx := context.Background()
	client, err := llm.NewClient(ctx, llmConfig(cfg), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}
	defer client.Close()

	store := tailor.NewMemoryStore()
	runner := tailor.NewRunner(store, client, tailor.RetryPolicy{Limit: cfg.RetryLimit, Delay: cfg.RetryDelay})

	job := &tailor.Job{
		ID: uuid.NewString(),
		Params: types.TailorParams{
			Resume:         resume,
			JobDescription: string(jobText),
			MasterProfile:  master,
		},
	}
	if err := store.CreateJob(ctx, job); err != nil {
		return err
	}

	start := time.Now()
	var result *types.TailorResult

	// The runner and the poller race like they do in production: the
	// runner drives the job, the poller decides when it is done.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Execute(gctx, job.ID)
	})
	g.Go(func() error {
		fetch := func(ctx context.Context, id string) (*poller.Status, error) {
			stored, err := store.GetJob(ctx, id)
			if err != nil {
				return nil, err
			}
			if stored == nil {
				return nil, fmt.Errorf("job %s not found", id)
			}
			return &poller.Status{Status: stored.Status, Output: stored.Output, Error: stored.Error}, nil
		}
		polled, err := poller.WaitForResult(gctx, job.ID, fetch, poller.Options{Interval: 100 * time.Millisecond})
		if err != nil {
			return err
		}
		result = polled
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if verbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintTailorResult(result)
		printer.PrintSummary(job.ID, tailor.StatusComplete, time.Since(start).Round(time.Millisecond).String())
	}

	return writeResult(result, tailorOutputPath)
}

func readResumeFile(path string) (*types.ResumeDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume file: %w", err)
	}
	var doc types.ResumeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse resume JSON %s: %w", path, err)
	}
	return &doc, nil
}

func writeResult(result *types.TailorResult, path string) error {
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if path == "" {
		fmt.Println(string(encoded))
		return nil
	}
	if err := os.WriteFile(path, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
