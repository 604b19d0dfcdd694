package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/travelease-dev/travelease/internal/apiclient"
	"github.com/travelease-dev/travelease/internal/authsession"
	"github.com/travelease-dev/travelease/internal/config"
	"github.com/travelease-dev/travelease/internal/logger"
	"github.com/travelease-dev/travelease/internal/nav"
	"github.com/travelease-dev/travelease/internal/session"
)

// Deps is everything a command needs. It is built lazily when the command
// runs so that flag parsing and help never touch the keychain or network.
type Deps struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   *session.Store
	Client  *apiclient.Client
	Manager *authsession.Manager
	History *nav.History
	Prompt  Prompter
	Out     io.Writer

	closer io.Closer
}

// Close releases the session backend
func (d *Deps) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

type settings struct {
	config  *config.Config
	kv      session.KV
	out     io.Writer
	prompt  Prompter
	version string
}

// Option customizes how command dependencies are built
type Option func(*settings)

// WithConfig uses cfg instead of loading configuration
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) {
		s.config = cfg
	}
}

// WithKV persists the session in kv instead of the configured backend
func WithKV(kv session.KV) Option {
	return func(s *settings) {
		s.kv = kv
	}
}

// WithOutput writes command output to w
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		s.out = w
	}
}

// WithPrompter replaces the interactive prompter
func WithPrompter(p Prompter) Option {
	return func(s *settings) {
		s.prompt = p
	}
}

// WithVersion sets the version reported by the CLI and web UI
func WithVersion(v string) Option {
	return func(s *settings) {
		s.version = v
	}
}

func resolve(opts []Option) settings {
	s := settings{out: os.Stdout, prompt: terminalPrompter{}, version: "dev"}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) build(defaultLevel string) (*Deps, error) {
	cfg := s.config
	if cfg == nil {
		loaded, err := config.Load(config.WithDefaultLogLevel(defaultLevel))
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	kv, closer := s.kv, io.Closer(nil)
	if kv == nil {
		opened, c, err := session.Open(cfg.Session.Backend, cfg.Session.Path, logger.Component(zlog, "session"))
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		kv, closer = opened, c
	}
	store := session.NewStore(kv)

	clientOpts := []apiclient.Option{apiclient.WithLogger(logger.Component(zlog, "apiclient"))}
	if cfg.API.Timeout > 0 {
		clientOpts = append(clientOpts, apiclient.WithTimeout(cfg.API.Timeout))
	}
	client := apiclient.New(cfg.API.URL, store, clientOpts...)

	history := nav.NewHistory("/")
	manager := authsession.New(store, client,
		authsession.WithNavigator(history),
		authsession.WithLogger(logger.Component(zlog, "session")),
	)

	return &Deps{
		Config:  cfg,
		Logger:  zlog,
		Store:   store,
		Client:  client,
		Manager: manager,
		History: history,
		Prompt:  s.prompt,
		Out:     s.out,
		closer:  closer,
	}, nil
}

// run builds the dependencies, runs fn and releases them
func run(ctx context.Context, opts []Option, defaultLevel string, fn func(ctx context.Context, d *Deps) error) error {
	d, err := resolve(opts).build(defaultLevel)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close session store")
		}
	}()
	return fn(ctx, d)
}
