package cmd

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/parleyhq/parley/internal/integrity"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Scan the database and every session for problems",
		Long: `Run a health check over the whole installation: verify the
database file, then validate tool pairing in every stored session.
Sessions are scanned concurrently.

With --fix, broken sessions are repaired as they are found.

Exits non-zero when problems remain, so it can gate scripts and cron
jobs.`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}

	cmd.Flags().Bool("fix", false, "Repair broken sessions during the scan")

	return cmd
}

// sessionHealth is one session's scan result. Fixed counts repairs applied,
// residual counts errors repair could not remove.
type sessionHealth struct {
	id       string
	title    string
	report   integrity.Report
	fixed    int
	residual int
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	fix, _ := cmd.Flags().GetBool("fix")

	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.Close()
	ctx := cmd.Context()

	findings, err := svcs.database.QuickCheck(ctx)
	if err != nil {
		return fmt.Errorf("checking database: %w", err)
	}
	if len(findings) == 0 {
		fmt.Println("Database: ok")
	} else {
		fmt.Println("Database: problems found")
		for _, f := range findings {
			fmt.Printf("  %s\n", f)
		}
	}

	list, err := svcs.sessions.List(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("Sessions: none")
		if len(findings) > 0 {
			return fmt.Errorf("database reported %d problem(s)", len(findings))
		}
		return nil
	}

	var (
		mu      sync.Mutex
		results []sessionHealth
	)

	eg, egCtx := errgroup.WithContext(ctx)
	for _, sess := range list {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			msgs, err := svcs.messages.GetBySession(egCtx, sess.ID)
			if err != nil {
				return fmt.Errorf("session %s: loading messages: %w", shortID(sess.ID), err)
			}

			health := sessionHealth{id: sess.ID, title: sessionTitle(sess.Title), report: integrity.Validate(msgs)}
			if fix && !health.report.IsValid {
				repaired, fixes := integrity.Repair(msgs)
				for _, f := range fixes {
					if err := svcs.messages.Update(egCtx, repaired[f.MessageIndex]); err != nil {
						return fmt.Errorf("session %s: persisting repair: %w", shortID(sess.ID), err)
					}
				}
				health.fixed = len(fixes)
				health.residual = len(integrity.Validate(repaired).Errors)
			}

			mu.Lock()
			results = append(results, health)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	// Goroutines finish in arbitrary order; report in the listing order.
	order := make(map[string]int, len(list))
	for i, sess := range list {
		order[sess.ID] = i
	}
	sort.Slice(results, func(i, j int) bool {
		return order[results[i].id] < order[results[j].id]
	})

	return printDoctorResults(results, len(findings), fix)
}

func printDoctorResults(results []sessionHealth, dbProblems int, fix bool) error {
	fmt.Printf("Sessions: %d scanned\n", len(results))

	broken, stillBroken := 0, 0
	for _, r := range results {
		switch {
		case r.report.IsValid:
			continue
		case fix && r.residual == 0:
			broken++
			fmt.Printf("  %s  %-28s repaired %d tool call(s)\n", shortID(r.id), r.title, r.fixed)
		case fix:
			broken++
			stillBroken++
			fmt.Printf("  %s  %-28s %d error(s) could not be repaired\n", shortID(r.id), r.title, r.residual)
		default:
			broken++
			stillBroken++
			fmt.Printf("  %s  %-28s %d error(s), %d warning(s)\n",
				shortID(r.id), r.title, len(r.report.Errors), len(r.report.Warnings))
		}
	}

	switch {
	case broken == 0:
		fmt.Println("All sessions healthy.")
	case stillBroken == 0:
		fmt.Printf("Repaired %d session(s).\n", broken)
	case !fix:
		fmt.Println("Run 'parley doctor --fix' to repair.")
	}

	if dbProblems > 0 {
		return fmt.Errorf("database reported %d problem(s)", dbProblems)
	}
	if stillBroken > 0 {
		return fmt.Errorf("%d session(s) with integrity errors", stillBroken)
	}
	return nil
}
