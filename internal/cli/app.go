package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/accessflow/internal/catalog"
	"github.com/dmitrijs2005/accessflow/internal/config"
	"github.com/dmitrijs2005/accessflow/internal/credentials"
	"github.com/dmitrijs2005/accessflow/internal/logging"
	"github.com/dmitrijs2005/accessflow/internal/metrics"
	"github.com/dmitrijs2005/accessflow/internal/models"
	"github.com/dmitrijs2005/accessflow/internal/repositories/kv"
	"github.com/dmitrijs2005/accessflow/internal/services"
	"github.com/dmitrijs2005/accessflow/internal/storage"
)

// AppFactory builds the App for a command run.
type AppFactory func(ctx context.Context, cfg *config.Config) (*App, error)

// App holds the wired services for one CLI process.
type App struct {
	config   *config.Config
	log      logging.Logger
	metrics  *metrics.Metrics
	store    *storage.Adapter
	catalog  *catalog.Catalog
	accounts services.SessionStore
	cart     services.CartStore
	checkout services.Checkout
	closeFn  func() error

	out    io.Writer
	reader *bufio.Reader

	// kept current through the services' subscriptions
	userEmail string
	cartCount int
}

// NewApp opens the configured backend and wires the services.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	repo, closeFn, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}

	app, err := newApp(ctx, cfg, repo, closeFn, logger)
	if err != nil {
		_ = closeFn()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, cfg *config.Config, repo kv.Repository, closeFn func() error, logger logging.Logger) (*App, error) {
	verifier, err := credentials.New(cfg.CredentialScheme)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	store := storage.New(repo, cfg.Storage.Namespace)

	accounts := services.NewAccountService(store, verifier, logger, services.WithMetrics(m))
	cart := services.NewCartService(store, logger,
		services.WithMetrics(m),
		services.WithProductLookup(cat),
	)

	if closeFn == nil {
		closeFn = noopClose
	}

	a := &App{
		config:   cfg,
		log:      logger,
		metrics:  m,
		store:    store,
		catalog:  cat,
		accounts: accounts,
		cart:     cart,
		checkout: services.NewCheckoutService(accounts, cart, logger, services.WithMetrics(m)),
		closeFn:  closeFn,
		out:      os.Stdout,
		reader:   bufio.NewReader(os.Stdin),
	}

	if cfg.SeedDemoUser {
		// a broken directory must not block "reset"
		if err := accounts.SeedDemoAccount(ctx); err != nil {
			logger.Warn(ctx, "demo account not seeded", "error", err)
		}
	}

	a.watch(ctx)
	return a, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

// watch primes the status fields and keeps them current.
func (a *App) watch(ctx context.Context) {
	if cur, err := a.accounts.Current(ctx); err == nil && cur != nil {
		a.userEmail = cur.Email
	}
	if n, err := a.cart.Count(ctx); err == nil {
		a.cartCount = n
	}

	a.accounts.Subscribe(func(acc *models.Account) {
		a.userEmail = ""
		if acc != nil {
			a.userEmail = acc.Email
		}
	})
	a.cart.Subscribe(func(s models.CartSnapshot) {
		a.cartCount = s.Count
	})
}

// SetIO redirects the App's output and interactive input.
func (a *App) SetIO(out io.Writer, in io.Reader) {
	a.out = out
	a.reader = bufio.NewReader(in)
}

func (a *App) isLoggedIn() bool {
	return a.userEmail != ""
}

func (a *App) status() string {
	who := "guest"
	if a.userEmail != "" {
		who = a.userEmail
	}
	return fmt.Sprintf("(%s, cart: %d)", who, a.cartCount)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// Close writes the metrics textfile, if configured, and releases the backend.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.metrics.WriteTextfile(a.config.MetricsFile); err != nil {
		errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
	}
	if err := a.closeFn(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
