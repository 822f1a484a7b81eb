package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/govalues/ledger"
	"github.com/govalues/ledger/pricedb"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration keys, settable in the --config file, as LEDGER_* environment
// variables or with the matching flags.
const (
	keyLogEncoder  = "logger.encoder"
	keyLogLevel    = "logger.level"
	keyCommodities = "commodities"
	keyPrices      = "prices"
	keyDB          = "db"
	keyJSON        = "json"
)

type app struct {
	v       *viper.Viper
	logger  zerolog.Logger
	pool    *ledger.Pool
	stores  []pricedb.Store
	cfgFile string
}

// Execute runs the command line and releases the process-wide pool
// afterwards, whether the command succeeded or not.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{v: viper.New(), logger: zerolog.Nop()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	defer a.close()
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ledger-amount",
		Short: "Parse, compute and value commodity amounts",
		Long: `ledger-amount works with commodity amounts as written in ledger files.

Commodities learn their precision and style from the amounts they appear in,
so "$1,000.00" makes every later dollar amount print with two decimals and
thousands separators.

Examples:
  ledger-amount parse '$1,000.00' '10 AAPL {$150.00}'
  ledger-amount calc '$10.00' / 3
  ledger-amount value --prices prices.db --in '$' '10 AAPL'`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.cfgFile, "config", "", "config file (YAML or JSON)")
	f.String("log-encoder", "console", "log encoder (console, json)")
	f.String("log-level", "warn", "log level")
	f.String("commodities", "", "commodity declarations file (YAML or JSON)")
	f.String("prices", "", "price directives file")
	f.String("db", "", "SQLite price database")
	f.Bool("json", false, "print results as JSON")
	for key, flag := range map[string]string{
		keyLogEncoder:  "log-encoder",
		keyLogLevel:    "log-level",
		keyCommodities: "commodities",
		keyPrices:      "prices",
		keyDB:          "db",
		keyJSON:        "json",
	} {
		//nolint:errcheck // the flags are defined above
		a.v.BindPFlag(key, f.Lookup(flag))
	}
	a.v.SetEnvPrefix("ledger")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(a.parseCmd(), a.calcCmd(), a.valueCmd(), a.pricesCmd())
	return root
}

// setup reads the configuration, builds the logger and initializes the
// process-wide pool with the declared commodities and prices.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %v", a.cfgFile)
		}
	}
	logger, err := buildLogger(cmd.ErrOrStderr(), a.v.GetString(keyLogEncoder), a.v.GetString(keyLogLevel))
	if err != nil {
		return err
	}
	a.logger = logger

	if err := ledger.Initialize(ledger.WithLogger(a.logger)); err != nil {
		return err
	}
	a.pool = ledger.CurrentPool()

	if path := a.v.GetString(keyCommodities); path != "" {
		cfg, err := ledger.LoadConfig(path)
		if err != nil {
			return err
		}
		if err := a.pool.Apply(cfg); err != nil {
			return errors.Wrapf(err, "apply %v", path)
		}
	}
	if path := a.v.GetString(keyPrices); path != "" {
		a.stores = append(a.stores, pricedb.NewFileStore(path, pricedb.WithLogger(a.logger)))
	}
	if dsn := a.v.GetString(keyDB); dsn != "" {
		db, err := pricedb.OpenSQLite(cmd.Context(), dsn, pricedb.WithLogger(a.logger))
		if err != nil {
			return err
		}
		a.stores = append(a.stores, db)
	}
	for _, s := range a.stores {
		n, err := pricedb.Load(cmd.Context(), s, a.pool)
		if err != nil {
			return err
		}
		a.logger.Debug().Int("prices", n).Msg("prices loaded")
	}
	return nil
}

func (a *app) close() {
	for _, s := range a.stores {
		if err := s.Close(); err != nil {
			a.logger.Error().Stack().Err(err).Msg("closing price store")
		}
	}
	if a.pool != nil {
		if err := ledger.Shutdown(); err != nil {
			a.logger.Error().Stack().Err(err).Msg("shutting down")
		}
	}
}

// parseArg parses a command line amount, reporting the argument on failure.
func (a *app) parseArg(s string, flags ledger.ParseFlags) (ledger.Amount, error) {
	amt, err := a.pool.Parse(s, flags)
	if err != nil {
		return ledger.Amount{}, errors.Wrapf(err, "argument %q", s)
	}
	return amt, nil
}
