package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rivo/uniseg"
	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/agent"
	"github.com/parleyhq/parley/internal/anthropic"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/events"
	"github.com/parleyhq/parley/internal/integrity"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/message"
	"github.com/parleyhq/parley/internal/pubsub"
	"github.com/parleyhq/parley/internal/session"
)

// titleMaxGraphemes bounds the session title derived from a first prompt.
const titleMaxGraphemes = 48

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <prompt>",
		Short: "Send a prompt and stream the reply",
		Long: `Send one prompt to the assistant and stream the reply to stdout.
The conversation continues in the most recent session unless --session
or --new says otherwise.

Before the request goes out, the session history is validated; tool
calls that lost their results (trimmed context, interrupted turns) are
repaired away so the API accepts the submission.

Examples:
  parley send "what's my balance?"
  parley send --new "send mia 5 USD"
  parley send -s 3f2a "did that payment settle?"`,
		Args: cobra.ExactArgs(1),
		RunE: runSend,
	}

	cmd.Flags().StringP("session", "s", "", "Session id or prefix to continue")
	cmd.Flags().Bool("new", false, "Start a fresh session")
	cmd.Flags().Bool("thinking", false, "Print thinking output to stderr")

	return cmd
}

func runSend(cmd *cobra.Command, args []string) error {
	prompt := args[0]
	sessionRef, _ := cmd.Flags().GetString("session")
	fresh, _ := cmd.Flags().GetBool("new")
	showThinking, _ := cmd.Flags().GetBool("thinking")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	selected, ok := cfg.SelectedModelFor(config.SelectedModelTypeLarge)
	if !ok {
		return fmt.Errorf("no model selected; run 'parley models' to pick one")
	}
	provider, ok := cfg.Providers[selected.Provider]
	if !ok || provider.APIKey == "" {
		return fmt.Errorf("provider %q has no API key; run 'parley config set providers.%s.api_key ...'",
			selected.Provider, selected.Provider)
	}

	client, err := anthropic.NewClient(anthropic.Config{
		APIKey:  provider.APIKey,
		BaseURL: provider.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	// Ctrl-C cancels the stream; whatever arrived is still persisted, and the
	// next turn's integrity pass cleans up anything left hanging.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sess, err := sendTarget(ctx, svcs.sessions, sessionRef, fresh, prompt)
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(logging.DefaultConfig())
	if err != nil {
		log = logging.NewNopLogger()
	}
	defer func() { _ = log.Sync() }()

	hub := pubsub.NewHub()
	defer hub.Shutdown()
	notices := watchIntegrity(ctx, hub)

	chat := agent.NewChat(agent.Config{
		Client:       client,
		Model:        selected,
		SystemPrompt: agent.DefaultSystemPrompt,
		Sessions:     agent.NewSessionAdapter(svcs.sessions, svcs.messages),
		Integrity: integrity.Options{
			FixErrors: cfg.Validation.FixErrorsEnabled(),
			LogErrors: cfg.Validation.LogErrorsEnabled(),
		},
		Hub: hub,
		Log: log,
	})

	var toolCalls []message.ToolCall
	sendErr := chat.Send(ctx, prompt, agent.SendOptions{SessionID: sess.ID}, agent.StreamCallbacks{
		OnTextDelta: func(text string) {
			fmt.Print(text)
		},
		OnThinkingDelta: func(text string) {
			if showThinking {
				fmt.Fprint(os.Stderr, text)
			}
		},
		OnToolCall: func(tc message.ToolCall) {
			toolCalls = append(toolCalls, tc)
			fmt.Fprintf(os.Stderr, "\n-> tool call %s %s\n", tc.Name, tc.Input)
		},
	})
	fmt.Println()

	stop()
	<-notices

	if sendErr != nil {
		if errors.Is(sendErr, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Interrupted; partial reply saved.")
			return nil
		}
		return sendErr
	}

	if len(toolCalls) > 0 {
		fmt.Fprintf(os.Stderr, "%d tool call(s) await results from the wallet service; unanswered calls are repaired away next turn.\n", len(toolCalls))
	}
	return nil
}

// sendTarget picks the session for this turn: an explicit reference, a fresh
// session titled from the prompt, or the most recent one.
func sendTarget(ctx context.Context, svc *session.Service, ref string, fresh bool, prompt string) (*session.Session, error) {
	switch {
	case ref != "" && fresh:
		return nil, fmt.Errorf("pass --session or --new, not both")
	case ref != "":
		sess, err := resolveSession(ctx, svc, ref)
		if err != nil {
			return nil, err
		}
		svc.SetCurrent(sess.ID)
		return sess, nil
	case fresh:
		return svc.Create(ctx, titleFromPrompt(prompt))
	default:
		return currentSession(ctx, svc)
	}
}

// titleFromPrompt derives a session title from the first prompt line, cut on
// a grapheme cluster boundary.
func titleFromPrompt(prompt string) string {
	title := strings.TrimSpace(prompt)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	if title == "" {
		return "New Conversation"
	}
	if uniseg.GraphemeClusterCount(title) <= titleMaxGraphemes {
		return title
	}

	var b strings.Builder
	g := uniseg.NewGraphemes(title)
	for count := 0; g.Next() && count < titleMaxGraphemes; count++ {
		b.WriteString(g.Str())
	}
	b.WriteString("...")
	return b.String()
}

// watchIntegrity surfaces pre-submission repairs on stderr. The returned
// channel closes once the subscription drains, after ctx is cancelled.
func watchIntegrity(ctx context.Context, hub *pubsub.Hub) <-chan struct{} {
	sub := hub.Integrity.Subscribe(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for ev := range sub {
			switch ev.Payload.Type {
			case events.IntegrityEventRepaired:
				fmt.Fprintf(os.Stderr, "Repaired %d unresolved tool call(s) before sending.\n", ev.Payload.FixCount)
			case events.IntegrityEventViolationsFound:
				fmt.Fprintf(os.Stderr, "History has %d integrity error(s); sending unrepaired (fix_errors is off).\n", ev.Payload.ErrorCount)
			}
		}
	}()

	return done
}
