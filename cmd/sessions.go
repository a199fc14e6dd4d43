package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/integrity"
	"github.com/parleyhq/parley/internal/message"
	"github.com/parleyhq/parley/internal/session"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage conversation sessions",
		Long: `Manage conversation sessions stored in the parley database.

Session ids may be abbreviated to any unique prefix.

Examples:
  parley sessions list             List all sessions
  parley sessions show 3f2a        Show a session's messages
  parley sessions search payment   Find sessions by keyword
  parley sessions delete 3f2a      Delete a session and its messages`,
	}

	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsShowCmd())
	cmd.AddCommand(newSessionsSearchCmd())
	cmd.AddCommand(newSessionsDeleteCmd())

	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all sessions",
		Args:  cobra.NoArgs,
		RunE:  runSessionsList,
	}
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	sessions, err := svcs.sessions.ListWithPreview(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions yet. Run 'parley send \"hello\"' to start one.")
		return nil
	}

	for _, s := range sessions {
		printSessionLine(s)
	}
	fmt.Printf("\n%d session(s)\n", len(sessions))
	return nil
}

func newSessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session's messages",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsShow,
	}
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.Close()
	ctx := cmd.Context()

	sess, err := resolveSession(ctx, svcs.sessions, args[0])
	if err != nil {
		return err
	}

	msgs, err := svcs.messages.GetBySession(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}

	fmt.Printf("Session: %s\n", sess.ID)
	fmt.Printf("Title:   %s\n", sessionTitle(sess.Title))
	fmt.Printf("Updated: %s\n", formatAge(sess.UpdatedAt))
	fmt.Printf("Messages: %d\n", len(msgs))

	report := integrity.Validate(msgs)
	fmt.Printf("Integrity: %s\n", integritySummary(report))
	if !report.IsValid {
		fmt.Printf("  Run 'parley check %s --fix' to repair.\n", shortID(sess.ID))
	}
	fmt.Println()

	for _, msg := range msgs {
		printMessage(msg)
	}
	return nil
}

func newSessionsSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Find sessions by title or message text",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSessionsSearch,
	}
}

func runSessionsSearch(cmd *cobra.Command, args []string) error {
	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	keyword := strings.Join(args, " ")
	sessions, err := svcs.sessions.SearchWithPreview(cmd.Context(), keyword)
	if err != nil {
		return fmt.Errorf("searching sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Printf("No sessions match %q.\n", keyword)
		return nil
	}

	for _, s := range sessions {
		printSessionLine(s)
	}
	fmt.Printf("\n%d match(es)\n", len(sessions))
	return nil
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and its messages",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsDelete,
	}
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.Close()
	ctx := cmd.Context()

	sess, err := resolveSession(ctx, svcs.sessions, args[0])
	if err != nil {
		return err
	}

	if err := svcs.sessions.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	fmt.Printf("Deleted session %s (%s)\n", shortID(sess.ID), sessionTitle(sess.Title))
	return nil
}

// resolveSession finds a session by full id or unique prefix.
func resolveSession(ctx context.Context, svc *session.Service, ref string) (*session.Session, error) {
	sess, err := svc.Get(ctx, ref)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return nil, err
	}

	list, err := svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	var matches []*session.Session
	for _, s := range list {
		if strings.HasPrefix(s.ID, ref) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("session %q: %w", ref, session.ErrNotFound)
	default:
		return nil, fmt.Errorf("session %q matches %d sessions, use a longer prefix", ref, len(matches))
	}
}

// currentSession returns the most recently active session, creating the
// first one on a fresh database.
func currentSession(ctx context.Context, svc *session.Service) (*session.Session, error) {
	list, err := svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	if len(list) > 0 {
		svc.SetCurrent(list[0].ID)
		return list[0], nil
	}
	return svc.Current(ctx)
}

func printSessionLine(s *session.SessionWithPreview) {
	preview := s.FirstMessage
	if preview != "" {
		preview = "  " + preview
	}
	fmt.Printf("%s  %-28s %3d msg  %s%s\n",
		shortID(s.ID), sessionTitle(s.Title), s.MessageCount, formatAge(s.UpdatedAt), preview)
}

func printMessage(msg *message.Message) {
	fmt.Printf("[%s]", msg.Role)
	if text := msg.TextContent(); text != "" {
		fmt.Printf(" %s", text)
	}
	fmt.Println()

	for _, tc := range msg.ToolCalls() {
		fmt.Printf("  -> tool call %s (%s)\n", tc.Name, tc.ID)
	}
	for _, tr := range msg.ToolResults() {
		status := "ok"
		if tr.IsError {
			status = "error"
		}
		fmt.Printf("  <- tool result for %s [%s]\n", tr.ToolCallID, status)
	}
}

func integritySummary(report integrity.Report) string {
	switch {
	case report.IsValid && len(report.Warnings) == 0:
		return "OK"
	case report.IsValid:
		return fmt.Sprintf("OK (%d warning(s))", len(report.Warnings))
	default:
		return fmt.Sprintf("%d error(s), %d warning(s)", len(report.Errors), len(report.Warnings))
	}
}

func sessionTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func formatAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours())/24)
	}
}
