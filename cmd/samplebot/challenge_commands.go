package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"samplebot/internal/challenge"
)

func newChallengeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Inspect challenges in the local database",
	}
	cmd.AddCommand(newChallengeStatusCommand(ctx))
	cmd.AddCommand(newChallengeListCommand(ctx))
	cmd.AddCommand(newChallengeSubmissionsCommand(ctx))
	return cmd
}

func newChallengeStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active challenge and database totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *challenge.Store) error {
				active, err := store.GetActiveChallenge(cmd.Context())
				if err != nil {
					return err
				}
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database: %s\n", store.Path())
				if active == nil {
					fmt.Fprintln(out, "Active challenge: none")
				} else {
					subs, err := store.ListSubmissions(cmd.Context(), active.ID)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Active challenge: #%d by %s\n", active.ID, active.OwnerID)
					fmt.Fprintf(out, "  Sample:      %s\n", active.SampleURL)
					fmt.Fprintf(out, "  Started:     %s\n", formatTime(active.CreatedAt))
					fmt.Fprintf(out, "  Submissions: %d\n", len(subs))
				}
				fmt.Fprintf(out, "Challenges: %d   Submissions: %d\n", stats.Challenges, stats.Submissions)
				return nil
			})
		},
	}
}

type challengeView struct {
	ID        int64  `json:"id"`
	OwnerID   string `json:"owner_id"`
	SampleURL string `json:"sample_url"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

func newChallengeListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List challenges, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *challenge.Store) error {
				items, err := store.ListChallenges(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					views := make([]challengeView, 0, len(items))
					for _, item := range items {
						views = append(views, challengeView{
							ID:        item.ID,
							OwnerID:   item.OwnerID,
							SampleURL: item.SampleURL,
							Active:    item.Active,
							CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
						})
					}
					return writeJSON(cmd, views)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No challenges yet")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.OwnerID,
						yesNo(item.Active),
						formatTime(item.CreatedAt),
						item.SampleURL,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
					{header: "ID", align: alignRight},
					{header: "Owner"},
					{header: "Active"},
					{header: "Started"},
					{header: "Sample", width: 60},
				}, rows))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum challenges to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newChallengeSubmissionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submissions [id]",
		Short: "List submissions for a challenge (default: the active one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *challenge.Store) error {
				target, err := resolveChallenge(cmd, store, args)
				if err != nil {
					return err
				}
				subs, err := store.ListSubmissions(cmd.Context(), target.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Challenge #%d by %s (%s)\n", target.ID, target.OwnerID, activeLabel(target.Active))
				if len(subs) == 0 {
					fmt.Fprintln(out, "No submissions")
					return nil
				}
				rows := make([][]string, 0, len(subs))
				for _, sub := range subs {
					rows = append(rows, []string{sub.OwnerID, formatTime(sub.CreatedAt), sub.TrackURL})
				}
				fmt.Fprintln(out, renderTable([]column{
					{header: "Owner"},
					{header: "Submitted"},
					{header: "Track", width: 60},
				}, rows))
				return nil
			})
		},
	}
}

func resolveChallenge(cmd *cobra.Command, store *challenge.Store, args []string) (*challenge.Challenge, error) {
	if len(args) == 0 {
		active, err := store.GetActiveChallenge(cmd.Context())
		if err != nil {
			return nil, err
		}
		if active == nil {
			return nil, fmt.Errorf("no active challenge; pass a challenge id")
		}
		return active, nil
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(args[0]), "#"), 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid challenge id %q", args[0])
	}
	found, err := store.GetChallenge(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("challenge %d not found", id)
	}
	return found, nil
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "ended"
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}
