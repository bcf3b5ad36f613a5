// Command loanshare operates a revenue-sharing ledger stored in a local
// bbolt database.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/config"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/engine"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/event"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/store"
)

const programName = "loanshare"

// app is the state shared by subcommands.
type app struct {
	dataDir  string
	caller   string
	keyFile  string
	password    string
	metricsFile string
	debug       bool

	cfg     config.Config
	logger  *slog.Logger
	metrics *prometheus.Registry
	eng     *engine.Engine
	closer  io.Closer
}

func (a *app) open() error {
	cfg, err := config.Load(a.dataDir)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.LogLevel = "debug"
	}
	logger, closer, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	s, err := store.OpenBoltStore(cfg.DBPath())
	if err != nil {
		closer.Close()
		return err
	}

	a.metrics = prometheus.NewRegistry()
	bus := event.NewBus(a.metrics, logger)
	bus.SubscribeAll(func(evt event.Event) {
		logger.Info("event", "type", evt.Type, "data", fmt.Sprintf("%+v", evt.Data))
	})
	a.cfg, a.logger, a.closer = cfg, logger, closer
	a.eng = engine.New(s,
		engine.WithLogger(logger.With("component", programName)),
		engine.WithBus(bus),
		engine.WithSalesOpenOnCreate(cfg.SalesOpenOnCreate),
	)
	return nil
}

// close shuts the engine down and, with --metrics-file, writes the
// command's metrics in the Prometheus text format.
func (a *app) close() error {
	var err error
	if a.eng != nil {
		err = a.eng.Close()
		a.eng = nil
	}
	if a.metrics != nil && a.metricsFile != "" {
		if werr := prometheus.WriteToTextfile(a.metricsFile, a.metrics); werr != nil && err == nil {
			err = fmt.Errorf("write metrics: %w", werr)
		}
		a.metrics = nil
	}
	if a.closer != nil {
		a.closer.Close()
		a.closer = nil
	}
	return err
}

// callerAddress returns the address every mutating command acts as: --as
// when given, otherwise the address of the --key file.
func (a *app) callerAddress() (account.Address, error) {
	if a.caller != "" {
		return account.Parse(a.caller)
	}
	if a.keyFile == "" {
		return account.Zero, fmt.Errorf("%w: --as or --key is required", account.ErrNilParam)
	}
	sealed, err := os.ReadFile(a.keyFile)
	if err != nil {
		return account.Zero, fmt.Errorf("read key file: %w", err)
	}
	password, err := a.keyPassword()
	if err != nil {
		return account.Zero, err
	}
	kp, err := account.OpenKey(sealed, password)
	if err != nil {
		return account.Zero, err
	}
	return kp.Address, nil
}

// keyPassword returns --password, falling back to $LOANSHARE_PASSWORD.
func (a *app) keyPassword() (string, error) {
	if a.password != "" {
		return a.password, nil
	}
	secrets, err := config.LoadSecrets()
	if err != nil {
		return "", err
	}
	return secrets.Password, nil
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           programName,
		Short:         "Capability-gated revenue accounting for tokenized loan packages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["offline"] == "true" {
				return nil
			}
			return a.open()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.dataDir, "datadir", config.DefaultDataDir(), "data directory")
	root.PersistentFlags().StringVar(&a.caller, "as", "", "address the command acts as (hex or base58)")
	root.PersistentFlags().StringVar(&a.keyFile, "key", "", "encrypted key file whose address the command acts as")
	root.PersistentFlags().StringVar(&a.password, "password", "", "password for --key and keygen --out (default $LOANSHARE_PASSWORD)")
	root.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this file when the command finishes")
	root.PersistentFlags().BoolVarP(&a.debug, "debug", "D", false, "enable debug logging")

	root.AddCommand(
		keygenCommand(a),
		initCommand(a),
		registerCommand(a),
		revokeCommand(a, true),
		revokeCommand(a, false),
		creatorCommand(a),
		executorCommand(a),
		authorizeCommand(a),
		createCommand(a),
		buyCommand(a),
		depositCommand(a),
		withdrawCommand(a),
		claimCommand(a),
		claimOwnerCommand(a),
		transferBondCommand(a),
		toggleSalesCommand(a),
		transferShareCommand(a),
		controllerCommand(a),
		fractionalizeCommand(a),
		redeemCommand(a),
		mergeCommand(a),
		sendUnitsCommand(a),
		destroyVaultCommand(a),
		showCommand(a),
		verifyCommand(a),
		checkCommand(a),
	)
	return root
}

func main() {
	a := &app{}
	if err := newRootCommand(a).Execute(); err != nil {
		a.close()
		fmt.Fprintf(os.Stderr, "%s: [%s] %v\n", programName, engine.Reason(err), err)
		os.Exit(1)
	}
}
