package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/fakestore"
	"github.com/xenking/storefront/internal/storage/sqlite"
)

type options struct {
	catalogURL string
	dataPath   string
	session    string
	timeout    time.Duration
	verbose    bool
}

// env holds the dependencies shared by all subcommands.
type env struct {
	lg       *zap.Logger
	db       *gorm.DB
	products *fakestore.Client
	carts    *cart.Sessions
	orders   *sqlite.OrderRepository
	checkout *order.Service
	session  string
}

func (e *env) cart(cmd *cobra.Command) (*cart.Cart, error) {
	return e.carts.Get(cmd.Context(), e.session)
}

func (e *env) close() {
	if e.db != nil {
		if err := sqlite.Close(e.db); err != nil {
			e.lg.Warn("Close database", zap.Error(err))
		}
	}
	_ = e.lg.Sync()
}

func defaultDataPath() string {
	if v := os.Getenv("STOREFRONT_DATA"); v != "" {
		return v
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "storefront.db"
	}
	return filepath.Join(dir, "storefront", "storefront.db")
}

func defaultCatalogURL() string {
	if v := os.Getenv("STOREFRONT_CATALOG_URL"); v != "" {
		return v
	}
	return fakestore.DefaultURL
}

func newRootCmd() *cobra.Command {
	var (
		opts options
		e    = &env{}
	)

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse the catalog and manage a local cart",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.open(opts)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			e.close()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.catalogURL, "catalog-url", defaultCatalogURL(), "catalog API base URL (STOREFRONT_CATALOG_URL)")
	f.StringVar(&opts.dataPath, "data", defaultDataPath(), "SQLite file holding the cart and orders (STOREFRONT_DATA)")
	f.StringVar(&opts.session, "session", cart.DefaultSession, "cart session name")
	f.DurationVar(&opts.timeout, "timeout", 10*time.Second, "catalog request timeout")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newProductsCmd(e),
		newProductCmd(e),
		newCartCmd(e),
		newCheckoutCmd(e),
		newOrdersCmd(e),
	)
	return root
}

func (e *env) open(opts options) error {
	e.lg = zap.NewNop()
	if opts.verbose {
		lg, err := zap.NewDevelopment()
		if err != nil {
			return errors.Wrap(err, "create logger")
		}
		e.lg = lg
	}

	db, err := sqlite.Open(opts.dataPath)
	if err != nil {
		return errors.Wrap(err, "open data")
	}
	e.db = db
	e.lg.Debug("Opened data", zap.String("path", opts.dataPath))

	e.products = fakestore.New(fakestore.Options{
		BaseURL: opts.catalogURL,
		Timeout: opts.timeout,
	})
	e.carts = cart.NewSessions(sqlite.NewKV(db), e.lg, nil)
	e.orders = sqlite.NewOrderRepository(db)
	e.checkout = order.NewService(e.orders)
	e.session = opts.session
	return nil
}
