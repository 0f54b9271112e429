package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/benvon/careerontrack/internal/apperr"
	"github.com/benvon/careerontrack/internal/client"
	"github.com/benvon/careerontrack/internal/config"
	"github.com/benvon/careerontrack/internal/goals"
	"github.com/benvon/careerontrack/internal/logger"
	"github.com/benvon/careerontrack/internal/session"
	"github.com/benvon/careerontrack/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Options overrides the process defaults; zero values fall back to the
// standard streams and the configured store
type Options struct {
	Out       io.Writer
	Err       io.Writer
	In        io.Reader
	Store     store.KVStore
	Transport http.RoundTripper
	Logger    *zap.Logger
}

// app holds everything a command needs once the root flags are parsed
type app struct {
	opts Options

	debug      bool
	configPath string
	apiURL     string

	logger  *zap.Logger
	api     *client.Client
	session *session.Manager
	goals   *goals.ListModel

	closers  []func() error
	// restored is set when a saved session was loaded at startup
	restored bool
	notified bool
}

// Run executes the CLI with args and reports any error on the error stream
func Run(ctx context.Context, args []string, opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}

	a := &app{opts: opts}
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if closeErr := a.close(); closeErr != nil {
		a.logger.Warn("cli_cleanup_failed", zap.Error(closeErr))
	}
	if err != nil {
		if !a.notified {
			fmt.Fprintf(opts.Err, "Error: %s\n", describe(err))
		}
		if a.sessionExpired() {
			fmt.Fprintln(opts.Err, "Your session has expired. Run 'careerontrack login' to sign in again.")
		}
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "careerontrack",
		Short:         "Track career goals from the command line",
		Long:          "Command-line client for the CareerOnTrack API: sign in, manage goals and review progress.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}
	cmd.SetOut(a.opts.Out)
	cmd.SetErr(a.opts.Err)
	cmd.SetIn(a.opts.In)

	flags := cmd.PersistentFlags()
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&a.configPath, "config", "", "Config file (default ~/.careerontrack/config.yaml)")
	flags.StringVar(&a.apiURL, "api-url", "", "API base URL, overrides the config file")

	cmd.AddCommand(newRegisterCmd(a))
	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newLogoutCmd(a))
	cmd.AddCommand(newWhoamiCmd(a))
	cmd.AddCommand(newProfileCmd(a))
	cmd.AddCommand(newGoalsCmd(a))
	cmd.AddCommand(newThemeCmd(a))
	cmd.AddCommand(newHealthCmd(a))
	return cmd
}

func (a *app) setup(ctx context.Context) error {
	a.logger = a.opts.Logger
	if a.logger == nil {
		l, err := logger.NewCLILogger(a.debug)
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		a.logger = l
		a.closers = append(a.closers, func() error {
			// Sync on a terminal fails on some platforms
			_ = logger.Sync(l)
			return nil
		})
	}

	cfg, err := config.LoadClient(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.apiURL != "" {
		if !strings.HasPrefix(a.apiURL, "http://") && !strings.HasPrefix(a.apiURL, "https://") {
			return fmt.Errorf("--api-url must start with http:// or https://, got %q", a.apiURL)
		}
		cfg.APIURL = a.apiURL
	}

	kv, err := a.openStore(cfg)
	if err != nil {
		return err
	}

	clientOpts := []client.Option{client.WithTimeout(cfg.Timeout), client.WithLogger(a.logger)}
	if a.opts.Transport != nil {
		clientOpts = append(clientOpts, client.WithTransport(a.opts.Transport))
	}
	a.api = client.New(cfg.APIURL, clientOpts...)
	a.session = session.NewManager(a.api, kv, a.logger)
	a.goals = goals.NewListModel(a.api, goals.NotifierFunc(a.notify), a.logger)

	a.session.Subscribe(func(s session.Snapshot) {
		if s.Status == session.StatusAnonymous {
			a.goals.Reset()
		}
	})
	a.restored = a.session.Initialize(ctx).Authenticated()

	a.logger.Debug("cli_ready",
		zap.String("api_url", cfg.APIURL),
		zap.String("store", cfg.Store),
	)
	return nil
}

func (a *app) openStore(cfg *config.ClientConfig) (store.KVStore, error) {
	if a.opts.Store != nil {
		return a.opts.Store, nil
	}

	switch cfg.Store {
	case config.StoreRedis:
		rs, err := store.NewRedisStore(cfg.RedisURL, store.DefaultRedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, rs.Close)
		return rs, nil
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	default:
		path := cfg.StateFile
		if path == "" {
			p, err := store.DefaultStatePath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return store.NewFileStore(path), nil
	}
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return errors.Join(errs...)
}

// notify reports a goal operation failure the way the list model words it
func (a *app) notify(title, message string) {
	a.notified = true
	if message == "" || message == title {
		fmt.Fprintf(a.opts.Err, "Error: %s\n", title)
		return
	}
	fmt.Fprintf(a.opts.Err, "Error: %s: %s\n", title, message)
}

var errLoginRequired = fmt.Errorf("%w; run 'careerontrack login' first", session.ErrNotAuthenticated)

func (a *app) requireSession() (session.Snapshot, error) {
	s := a.session.Snapshot()
	if !s.Authenticated() {
		return s, errLoginRequired
	}
	return s, nil
}

// sessionExpired reports whether the server rejected a session restored at startup
func (a *app) sessionExpired() bool {
	return a.restored && a.session != nil && !a.session.Snapshot().Authenticated()
}

func describe(err error) string {
	msg := apperr.Message(err, err.Error())
	if errors.Is(err, apperr.ErrNetwork) {
		return "cannot reach the server: " + msg
	}
	return msg
}
