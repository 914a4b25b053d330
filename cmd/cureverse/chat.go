package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	handlerchannel "github.com/cureverse/cureverse/internal/handler/channel"
	"github.com/cureverse/cureverse/internal/model/symptom"
	"github.com/cureverse/cureverse/internal/protocol"
	"github.com/cureverse/cureverse/internal/service/assistant"
	"github.com/cureverse/cureverse/internal/service/channel"
	chatservice "github.com/cureverse/cureverse/internal/service/chat"
	"github.com/cureverse/cureverse/internal/service/session"
	"github.com/cureverse/cureverse/internal/view"
)

const prompt = "you> "

// drainTimeout bounds how long chat waits for an outstanding reply once input
// ends.
const drainTimeout = 30 * time.Second

func newChatCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: "Start an interactive chat session. Type a message and press enter.\n" +
			"Commands: /suggest [N], /feedback helpful|not, /clear, /help, /quit.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.serverURL, "url", "", "assistant WebSocket URL")
	flags.StringVar(&opts.natsURL, "nats-url", "", "use NATS at this URL instead of WebSocket")
	flags.StringVar(&opts.natsPrefix, "nats-prefix", "", "NATS subject prefix")
	flags.BoolVar(&opts.local, "local", false, "run the reference assistant in-process")
	flags.IntVar(&opts.replayLimit, "replay", 0, "number of saved messages to redraw on start")
	flags.DurationVar(&opts.minDwell, "min-dwell", 0, "minimum time the typing indicator stays up")
	return cmd
}

func runChat(ctx context.Context, opts *clientOptions, in io.Reader, out io.Writer) error {
	store, backend, err := opts.openTranscript(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	ch, err := opts.dial(ctx)
	if err != nil {
		return err
	}
	defer ch.Close()

	term := view.NewTerminal(out)
	term.Prompt = prompt

	ctrl, err := session.New(session.Deps{
		Channel:  ch,
		Store:    store,
		Renderer: opts.renderer(),
		View:     term,
	},
		session.WithMinDwell(opts.minDwell),
		session.WithReplayLimit(opts.replayLimit),
	)
	if err != nil {
		return err
	}

	ctrl.Init(ctx)
	fmt.Fprintln(out, "Type /help for commands.")
	return repl(ctx, ctrl, in, out)
}

// dial picks the transport: in-process, NATS or WebSocket.
func (o *clientOptions) dial(ctx context.Context) (channel.Adapter, error) {
	id := o.session
	if id == "" {
		id = uuid.NewString()
	}

	switch {
	case o.local:
		client, server := channel.NewPipe()
		opts := []assistant.Option{assistant.WithHistoryLimit(o.cfg.AI.HistoryLimit)}
		if o.cfg.AI.Enabled() {
			gen, err := assistant.NewChainGenerator(ctx, o.cfg.AI)
			if err != nil {
				log.Warn().Err(err).Msg("local assistant running without AI chain")
			} else {
				opts = append(opts, assistant.WithGenerator(gen))
			}
		}
		svc := assistant.New(symptom.NewMemoryStore(symptom.Seed()), chatservice.NewService(), opts...)
		handlerchannel.NewResponder(svc, nil).Bind(ctx, server, id)
		return &pipePair{Pipe: client, server: server}, nil
	case o.natsURL != "":
		return channel.ConnectNATS(channel.NATSOptions{URL: o.natsURL, Prefix: o.natsPrefix, Session: id})
	default:
		return channel.DialWebSocket(ctx, channel.WebSocketOptions{URL: o.serverURL, Session: id})
	}
}

// pipePair closes both ends of a local pipe.
type pipePair struct {
	*channel.Pipe
	server *channel.Pipe
}

func (p *pipePair) Close() error {
	err := p.Pipe.Close()
	if serr := p.server.Close(); err == nil {
		err = serr
	}
	return err
}

// chatController is the part of session.Controller the command loop drives.
type chatController interface {
	Submit(ctx context.Context, text string) bool
	SendSuggestion(ctx context.Context, suggestion string) bool
	SendFeedback(ctx context.Context, feedback string) error
	Reset(ctx context.Context)
	State() session.State
}

func repl(ctx context.Context, ctrl chatController, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				drain(ctx, ctrl)
				return nil
			}
			if quit := dispatch(ctx, ctrl, strings.TrimSpace(line), out); quit {
				return nil
			}
		}
	}
}

// dispatch runs one input line and reports whether the session should end.
func dispatch(ctx context.Context, ctrl chatController, line string, out io.Writer) bool {
	if !strings.HasPrefix(line, "/") {
		ctrl.Submit(ctx, line)
		return false
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/clear":
		ctrl.Reset(ctx)
	case "/help":
		fmt.Fprintln(out, "/suggest [N]            list suggestions or send suggestion N")
		fmt.Fprintln(out, "/feedback helpful|not   rate the last assistant reply")
		fmt.Fprintln(out, "/clear                  start a new conversation")
		fmt.Fprintln(out, "/quit                   leave")
	case "/suggest":
		if len(fields) < 2 {
			for i, s := range session.Suggestions {
				fmt.Fprintf(out, "  %d. %s\n", i+1, s)
			}
			return false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > len(session.Suggestions) {
			fmt.Fprintf(out, "No suggestion %q.\n", fields[1])
			return false
		}
		ctrl.SendSuggestion(ctx, session.Suggestions[n-1])
	case "/feedback":
		value, ok := feedbackValue(fields[1:])
		if !ok {
			fmt.Fprintln(out, "Usage: /feedback helpful|not")
			return false
		}
		if err := ctrl.SendFeedback(ctx, value); err != nil {
			if errors.Is(err, session.ErrNoReply) {
				fmt.Fprintln(out, "Nothing to rate yet.")
			} else {
				fmt.Fprintf(out, "Feedback not sent: %v\n", err)
			}
			return false
		}
		fmt.Fprintln(out, "Thanks for your feedback!")
	default:
		fmt.Fprintf(out, "Unknown command %s. Type /help.\n", fields[0])
	}
	return false
}

func feedbackValue(args []string) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	switch strings.ToLower(args[0]) {
	case "helpful", "yes", "+":
		return protocol.FeedbackHelpful, true
	case "not", "no", "-":
		return protocol.FeedbackNotHelpful, true
	}
	return "", false
}

func drain(ctx context.Context, ctrl chatController) {
	deadline := time.Now().Add(drainTimeout)
	for ctrl.State() == session.AwaitingReply && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
}
