package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/railplan/copilot/client"
)

const requestTimeout = 90 * time.Second

func newPreviewCmd() *cobra.Command {
	var payloadJSON string
	var payloadFile string

	cmd := &cobra.Command{
		Use:   "preview [prompt]",
		Short: "Preview a mutation from a prompt or a JSON payload",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			var resp *client.PreviewResponse
			var err error
			switch {
			case payloadJSON != "" || payloadFile != "":
				payload, perr := loadPayload(payloadJSON, payloadFile)
				if perr != nil {
					fatal("reading payload", perr)
				}
				resp, err = apiClient.Preview(ctx, payload)
			case len(args) == 1:
				resp, err = apiClient.PreviewPrompt(ctx, args[0])
			default:
				fatal("preview", fmt.Errorf("either a prompt argument or --payload/--payload-file is required"))
			}
			if err != nil {
				fatal("preview failed", err)
			}
			printPreview(resp)
		},
	}

	cmd.Flags().StringVar(&payloadJSON, "payload", "", "Inline JSON action payload")
	cmd.Flags().StringVar(&payloadFile, "payload-file", "", "Path to a JSON action payload file")
	return cmd
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <resolution-id> <selected-id>",
		Short: "Answer a clarification with the chosen candidate",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			resp, err := apiClient.Resolve(ctx, args[0], args[1])
			if err != nil {
				fatal("resolve failed", err)
			}
			printPreview(resp)
		},
	}
}

func newCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit <preview-id>",
		Short: "Commit a pending preview",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			resp, err := apiClient.Commit(ctx, args[0])
			if err != nil {
				fatal("commit failed", err)
			}
			if flagFmt == "json" {
				printJSON(resp)
				return
			}
			fmt.Printf("Committed: %s\n", resp.Summary)
			printChanges(resp.Changes)
			if len(resp.RefreshHints) > 0 {
				fmt.Printf("Refresh: %v\n", resp.RefreshHints)
			}
		},
	}
}

func newAuditCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit log entries",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			entries, err := apiClient.RecentAudit(ctx, limit)
			if err != nil {
				fatal("audit query failed", err)
			}
			if flagFmt == "json" {
				printJSON(entries)
				return
			}
			for _, e := range entries {
				who := e.ClientID
				if who == "" {
					who = "-"
				}
				fmt.Printf("%s  %-9s %-12s %s\n", e.CreatedAt, e.Event, who, e.Summary)
			}
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries")
	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			resp, err := apiClient.Health(ctx)
			if err != nil {
				fatal("health check failed", err)
			}
			if flagFmt == "json" {
				printJSON(resp)
				return
			}
			fmt.Printf("status=%s version=%s database=%s ws_clients=%d uptime=%.0fs\n",
				resp.Status, resp.Version, resp.Database, resp.WSClients, resp.UptimeSeconds)
		},
	}
}

func loadPayload(inline, file string) (map[string]any, error) {
	raw := []byte(inline)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	return payload, nil
}

func printPreview(resp *client.PreviewResponse) {
	if flagFmt == "json" {
		printJSON(resp)
		return
	}
	switch resp.Kind {
	case "applied":
		fmt.Printf("Preview %s\n%s\n", resp.PreviewID, resp.Summary)
		printChanges(resp.Changes)
		fmt.Printf("Commit with: copilot commit %s\n", resp.PreviewID)
	case "clarification":
		fmt.Printf("%s\n", resp.Question)
		for _, opt := range resp.Options {
			fmt.Printf("  %s  %s\n", opt.ID, opt.Label)
		}
		fmt.Printf("Answer with: copilot resolve %s <selected-id>\n", resp.ResolutionID)
	default:
		fmt.Printf("Rejected: %s\n", resp.Feedback)
	}
}

func printChanges(changes []client.Change) {
	for _, ch := range changes {
		fmt.Printf("  %-6s %-22s %s\n", ch.Kind, ch.EntityType, ch.Label)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("encoding output", err)
	}
}
