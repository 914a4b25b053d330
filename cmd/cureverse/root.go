package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cureverse/cureverse/internal/config"
	"github.com/cureverse/cureverse/internal/render"
	"github.com/cureverse/cureverse/internal/service/transcript"
	"github.com/cureverse/cureverse/internal/storage"
	"github.com/cureverse/cureverse/pkg/logging"
)

// clientOptions collects flag values. Unset flags fall back to config.Load.
type clientOptions struct {
	cfg *config.Config

	serverURL   string
	natsURL     string
	natsPrefix  string
	local       bool
	store       string
	storeDSN    string
	storageKey  string
	session     string
	replayLimit int
	minDwell    time.Duration
	style       string
	width       int
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &clientOptions{}

	root := &cobra.Command{
		Use:           "cureverse",
		Short:         "Chat with the CureVerse Ayurvedic assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envErr := godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.applyDefaults(cmd)
			logging.Setup(os.Stderr, opts.logLevel)
			if envErr != nil && !os.IsNotExist(envErr) {
				return envErr
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.store, "store", "", "transcript backend: memory, file, sqlite or redis")
	flags.StringVar(&opts.storeDSN, "store-dsn", "", "directory, sqlite DSN or redis address for the backend")
	flags.StringVar(&opts.storageKey, "storage-key", "", "base storage key for the transcript")
	flags.StringVar(&opts.session, "session", "", "session name qualifying the storage key")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn or error")
	flags.StringVar(&opts.style, "style", "", "glamour style for assistant markdown (auto when empty)")
	flags.IntVar(&opts.width, "width", 80, "word wrap width for assistant markdown")

	root.AddCommand(newChatCmd(opts), newHistoryCmd(opts), newClearCmd(opts))
	return root
}

func (o *clientOptions) applyDefaults(cmd *cobra.Command) {
	flags := cmd.Flags()
	client := o.cfg.Client
	if !flags.Changed("url") {
		o.serverURL = client.ServerURL
	}
	if !flags.Changed("nats-url") {
		o.natsURL = o.cfg.NATS.URL
	}
	if !flags.Changed("nats-prefix") {
		o.natsPrefix = o.cfg.NATS.SubjectPrefix
	}
	if !flags.Changed("store") {
		o.store = client.Store
	}
	if !flags.Changed("store-dsn") {
		o.storeDSN = client.StoreDSN
	}
	if !flags.Changed("storage-key") {
		o.storageKey = client.StorageKey
	}
	if !flags.Changed("session") {
		o.session = client.Session
	}
	if !flags.Changed("replay") {
		o.replayLimit = client.ReplayLimit
	}
	if !flags.Changed("min-dwell") {
		o.minDwell = client.MinDwell
	}
	if !flags.Changed("log-level") {
		o.logLevel = o.cfg.LogLevel
	}
}

func (o *clientOptions) openTranscript(ctx context.Context) (*transcript.Store, storage.Backend, error) {
	backend, err := storage.Open(ctx, storage.Kind(o.store), o.storeDSN)
	if err != nil {
		return nil, nil, err
	}
	return transcript.New(backend, transcript.Key(o.storageKey, o.session)), backend, nil
}

func (o *clientOptions) renderer() *render.Renderer {
	return render.New(
		render.WithTransform(render.NewTerminalTransform(o.style, o.width)),
		render.WithEscaper(render.TerminalEscape),
		render.WithLocation(time.Local),
	)
}
