package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/integrity"
	"github.com/parleyhq/parley/internal/transcript"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [session-id]",
		Short: "Validate tool pairing in a session or transcript file",
		Long: `Validate that every tool call in a conversation has a matching
tool result. Without arguments the most recent session is checked.

With --fix, unresolved tool calls are removed: a session is repaired in
the database, a transcript file is rewritten in place.

Examples:
  parley check                      Check the most recent session
  parley check 3f2a                 Check a session by id prefix
  parley check --file export.json   Check an exported transcript
  parley check 3f2a --fix           Repair a broken session
  parley check --json               Machine-readable report`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().String("file", "", "Check a transcript file instead of a session")
	cmd.Flags().Bool("fix", false, "Remove unresolved tool calls")
	cmd.Flags().Bool("json", false, "Print the report as JSON")

	return cmd
}

// checkRun is the outcome of checking one target, and the JSON output shape.
// Residual errors are violations repair could not remove; they only occur in
// legacy-content messages, which the repairer leaves untouched.
type checkRun struct {
	Target   string              `json:"target"`
	Report   integrity.Report    `json:"report"`
	Fixes    []integrity.Fix     `json:"fixes,omitempty"`
	Residual []integrity.Finding `json:"residual_errors,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	fix, _ := cmd.Flags().GetBool("fix")
	asJSON, _ := cmd.Flags().GetBool("json")

	var (
		run *checkRun
		err error
	)
	switch {
	case file != "" && len(args) > 0:
		return fmt.Errorf("pass a session id or --file, not both")
	case file != "":
		run, err = checkFile(file, fix)
	default:
		run, err = checkSession(cmd, args, fix)
	}
	if err != nil || run == nil {
		return err
	}

	return reportCheckRun(*run, fix, asJSON)
}

// checkSession validates one stored session, repairing it in the database
// when fix is set. A nil run with nil error means there was nothing to check.
func checkSession(cmd *cobra.Command, args []string, fix bool) (*checkRun, error) {
	svcs, err := openServices()
	if err != nil {
		return nil, err
	}
	defer svcs.Close()
	ctx := cmd.Context()

	var sessionID string
	if len(args) > 0 {
		sess, err := resolveSession(ctx, svcs.sessions, args[0])
		if err != nil {
			return nil, err
		}
		sessionID = sess.ID
	} else {
		list, err := svcs.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing sessions: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No sessions to check.")
			return nil, nil
		}
		sessionID = list[0].ID
	}

	msgs, err := svcs.messages.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}

	run := &checkRun{Target: sessionID, Report: integrity.Validate(msgs)}
	if !fix || run.Report.IsValid {
		return run, nil
	}

	repaired, fixes := integrity.Repair(msgs)
	for _, f := range fixes {
		if err := svcs.messages.Update(ctx, repaired[f.MessageIndex]); err != nil {
			return nil, fmt.Errorf("persisting repair: %w", err)
		}
	}
	run.Fixes = fixes
	run.Residual = integrity.Validate(repaired).Errors
	return run, nil
}

// checkFile validates a transcript file, rewriting it in place when fix is
// set and anything was repaired.
func checkFile(path string, fix bool) (*checkRun, error) {
	tr, err := transcript.Load(path)
	if err != nil {
		return nil, err
	}

	msgs := tr.ToMessages()
	run := &checkRun{Target: path, Report: integrity.Validate(msgs)}
	if !fix || run.Report.IsValid {
		return run, nil
	}

	repaired, fixes := integrity.Repair(msgs)
	if len(fixes) > 0 {
		if err := transcript.New(tr.SessionID, tr.Title, repaired).ExportFile(path); err != nil {
			return nil, err
		}
	}
	run.Fixes = fixes
	run.Residual = integrity.Validate(repaired).Errors
	return run, nil
}

func reportCheckRun(run checkRun, fix, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printCheckRun(run)
	}

	// Violations fail the command so scripts can gate on it, unless --fix
	// removed them all.
	switch {
	case len(run.Residual) > 0:
		return fmt.Errorf("%d integrity error(s) in %s could not be repaired", len(run.Residual), run.Target)
	case !run.Report.IsValid && !fix:
		return fmt.Errorf("%d integrity error(s) in %s", len(run.Report.Errors), run.Target)
	}
	return nil
}

func printCheckRun(run checkRun) {
	fmt.Printf("Checked %s\n", run.Target)

	if run.Report.IsValid && len(run.Report.Warnings) == 0 {
		fmt.Println("Integrity: OK")
		return
	}

	for _, f := range run.Report.Errors {
		fmt.Printf("  error: message %d: tool call %s %s\n", f.MessageIndex, f.ToolCallID, f.Reason)
	}
	for _, f := range run.Report.Warnings {
		fmt.Printf("  warning: message %d: tool result %s %s\n", f.MessageIndex, f.ToolCallID, f.Reason)
	}

	switch {
	case len(run.Fixes) > 0:
		fmt.Printf("Repaired: removed %d unresolved tool call(s)\n", len(run.Fixes))
	case !run.Report.IsValid:
		fmt.Println("Run again with --fix to repair.")
	}
}
