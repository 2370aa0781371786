package main

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/legal-lab/internal/analysis/openai"
	"github.com/JaimeStill/legal-lab/internal/cases"
	"github.com/JaimeStill/legal-lab/internal/credentials"
	"github.com/JaimeStill/legal-lab/internal/normalize"
	"github.com/JaimeStill/legal-lab/internal/pipeline"
)

var (
	analyzeCredential string
	analyzeUser       string
	analyzePersist    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a document and print the result",
	Long: `Runs the analysis pipeline on a local file. The credential comes from
--credential, then ANALYSIS_DEFAULT_CREDENTIAL. With --persist and --user, a
legal result is written to the configured case store.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeCredential, "credential", "k", "", "Analysis service credential")
	analyzeCmd.Flags().StringVarP(&analyzeUser, "user", "u", "", "User id owning the case record")
	analyzeCmd.Flags().BoolVarP(&analyzePersist, "persist", "p", false, "Persist legal results as case records")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	deps := pipeline.Deps{
		Normalizer:     normalize.New(cfg.Analysis.MaxUploadSizeBytes()),
		Client:         openai.New(&cfg.Analysis, logger),
		PersistTimeout: cfg.Cases.PersistTimeoutDuration(),
		Logger:         logger,
	}

	saved := credentials.Static(cfg.Analysis.DefaultCredential).Saved(cmd.Context(), analyzeUser)

	var persisted cases.Outcome
	if analyzePersist {
		if analyzeUser == "" {
			return errors.New("--persist requires --user")
		}
		store, closeStore, err := openCaseStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		deps.Persister = cases.NewAdapter(store, logger)
		deps.Observer = func(o cases.Outcome) { persisted = o }
	}

	orch := pipeline.New(deps)
	out, err := orch.Submit(cmd.Context(), pipeline.Request{
		File: normalize.File{
			Name:      filepath.Base(path),
			MediaType: mime.TypeByExtension(filepath.Ext(path)),
			Size:      info.Size(),
			Content:   f,
		},
		Explicit: analyzeCredential,
		Saved:    saved,
		UserID:   analyzeUser,
	})
	orch.Wait()

	printOutcome(cmd.OutOrStdout(), out)
	if err != nil {
		return err
	}

	switch p := persisted.(type) {
	case cases.Persisted:
		cmd.Printf("case record %s saved\n", p.RecordID)
	case cases.PersistWarning:
		cmd.Printf("case record not saved: %s\n", p.Error())
	}
	return nil
}

func printOutcome(w io.Writer, out pipeline.Outcome) {
	table := newTable(w, "Field", "Value")
	table.Append([]string{"State", string(out.State)})
	table.Append([]string{"File", out.FileName})
	if out.PageCount > 0 {
		table.Append([]string{"Pages", fmt.Sprint(out.PageCount)})
	}

	if out.Failure != nil {
		table.Append([]string{"Failure", string(out.Failure.Kind)})
		table.Append([]string{"Message", out.Failure.Message})
	}

	if r := out.Result; r != nil {
		table.Append([]string{"Outcome", string(out.Verdict)})
		if !r.IsLegalDocument {
			table.Append([]string{"Guidance", r.ErrorMessage})
		} else {
			table.Append([]string{"Document Type", r.DocumentType})
			table.Append([]string{"Summary", r.Summary})
			table.Append([]string{"Key Points", bullets(r.KeyPoints)})
			table.Append([]string{"Risks", bullets(r.Risks)})
			table.Append([]string{"Actions", bullets(r.Actions)})
			table.Append([]string{"Parties", strings.Join(r.Parties, ", ")})
			table.Append([]string{"Dates", strings.Join(r.Dates, ", ")})
		}
	}
	table.Render()
}

func bullets(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}
