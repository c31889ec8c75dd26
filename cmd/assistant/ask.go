package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/personalai/assistant/internal/agent"
	"github.com/personalai/assistant/internal/security"
	"github.com/personalai/assistant/internal/server"
	"github.com/personalai/assistant/internal/store"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Run one natural-language request through the pipeline",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := context.Background()

		db, err := store.Open(ctx, store.DBConfig{DSN: cfg.DatabaseURL})
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		gen, err := server.NewGenerator(ctx, cfg)
		if err != nil {
			return err
		}
		audit := security.NewAuditLogger(cfg.EnableAuditLogging)
		pipeline := server.NewPipeline(cfg, gen, store.New(db), db, audit)

		question := strings.Join(args, " ")
		spinner, _ := pterm.DefaultSpinner.Start("Thinking about: " + question)
		env := pipeline.Run(ctx, agent.Action{Text: question, Caller: "cli"})
		if env.Err != nil {
			spinner.Fail(env.Error)
		} else {
			spinner.Success(fmt.Sprintf("intent: %s", env.Intent))
		}

		if askJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(env)
		}
		return printEnvelope(env)
	},
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full response envelope as JSON")
}

func printEnvelope(env *agent.Envelope) error {
	if env.SQLQuery != "" {
		pterm.DefaultSection.Println("SQL")
		pterm.Println(env.SQLQuery)
	}
	if env.Err != nil {
		return env.Err
	}

	switch env.Intent {
	case agent.IntentViewing:
		out, err := json.MarshalIndent(env.Appointments, "", "  ")
		if err != nil {
			return err
		}
		pterm.DefaultSection.Println("Appointments")
		pterm.Println(string(out))
		return nil
	case agent.IntentBooking:
		pterm.Info.Println("booking requests are handled by POST /create-appointment/")
		return nil
	}

	if len(env.Results) > 0 {
		pterm.DefaultSection.Println("Results")
		if err := pterm.DefaultTable.WithHasHeader().WithData(resultTable(env.Results)).Render(); err != nil {
			return err
		}
	}
	pterm.DefaultSection.Println("Answer")
	pterm.Println(env.UserMessage)
	return nil
}

// resultTable renders rows with a sorted header built from every column seen.
func resultTable(rows []store.Row) pterm.TableData {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for col := range row {
			seen[col] = struct{}{}
		}
	}
	header := make([]string, 0, len(seen))
	for col := range seen {
		header = append(header, col)
	}
	sort.Strings(header)

	data := pterm.TableData{header}
	for _, row := range rows {
		line := make([]string, len(header))
		for i, col := range header {
			if v, ok := row[col]; ok && v != nil {
				line[i] = fmt.Sprint(v)
			}
		}
		data = append(data, line)
	}
	return data
}
