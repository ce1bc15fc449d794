package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/skykeeper/internal/client/client"
	"github.com/dmitrijs2005/skykeeper/internal/client/config"
	"github.com/dmitrijs2005/skykeeper/internal/client/keysource"
	"github.com/dmitrijs2005/skykeeper/internal/client/persistence"
	"github.com/dmitrijs2005/skykeeper/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/skykeeper/internal/client/services"
	"github.com/dmitrijs2005/skykeeper/internal/cryptox"
	"github.com/dmitrijs2005/skykeeper/internal/logging"
	"github.com/dmitrijs2005/skykeeper/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	registry    *prometheus.Registry
	store       *persistence.Store
	log         logging.Logger

	reader *bufio.Reader
	out    io.Writer

	// current is the id of the account commands act on by default.
	current       string
	currentHandle string
}

type AppOption func(*appOptions)

type appOptions struct {
	in         io.Reader
	out        io.Writer
	httpClient *http.Client
	log        logging.Logger
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) AppOption {
	return func(o *appOptions) { o.in, o.out = in, out }
}

// WithHTTPClient replaces the HTTP client used for every PDS.
func WithHTTPClient(hc *http.Client) AppOption {
	return func(o *appOptions) { o.httpClient = hc }
}

func WithLogger(l logging.Logger) AppOption {
	return func(o *appOptions) { o.log = l }
}

// NewApp wires the credential store selected by c.Backend, the session
// client and the auth service. The file backend asks passphrase for the key
// that unlocks the store; the passphrase is wiped once the key is derived.
func NewApp(ctx context.Context, c *config.Config, passphrase keysource.Source, opts ...AppOption) (*App, error) {
	o := appOptions{
		in:         os.Stdin,
		out:        os.Stdout,
		httpClient: &http.Client{Timeout: c.RequestTimeout},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.NewLogger(c.LogLevel, os.Stderr)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	app := &App{
		config:   c,
		registry: reg,
		log:      o.log,
		reader:   bufio.NewReader(o.in),
		out:      o.out,
	}

	var repo credentials.Repository
	switch c.Backend {
	case config.BackendMemory:
		repo = credentials.NewMemoryRepository()
	default:
		pw, err := passphrase.Passphrase(ctx)
		if err != nil {
			return nil, fmt.Errorf("unlock credential store: %w", err)
		}
		store, err := persistence.Open(c.DataDir, pw)
		cryptox.Wipe(pw)
		if err != nil {
			return nil, err
		}
		fileRepo, err := credentials.NewFileRepository(store,
			credentials.WithLogger(o.log), credentials.WithMetrics(m))
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		app.store = store
		repo = fileRepo
		o.log.Debug(ctx, "credential store opened", "store", store.String())
	}

	factory := services.XRPCClientFactory(
		client.WithHTTPClient(o.httpClient),
		client.WithLogger(o.log),
		client.WithMetrics(m),
	)
	app.authService = services.NewAuthService(repo, factory, services.WithLogger(o.log))
	return app, nil
}

// Run restores the stored sessions and serves the REPL until the user exits
// or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	fmt.Fprintln(a.out, "skykeeper (type 'help' for commands)")
	if err := a.restore(ctx); err != nil {
		return err
	}
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

// Close wipes the store key. It is safe to call more than once.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func (a *App) restore(ctx context.Context) error {
	accounts, err := a.authService.RestoreSessions(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(a.out, "No saved accounts. Use 'login' to add one.")
		return nil
	}
	fmt.Fprintf(a.out, "Restored %d account(s).\n", len(accounts))
	a.setCurrent(accounts[0].ID, accounts[0].Handle)
	return nil
}

func (a *App) setCurrent(id, handle string) {
	a.current, a.currentHandle = id, handle
}

func (a *App) getStatus() string {
	if a.currentHandle == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.currentHandle)
}
