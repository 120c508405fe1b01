// Package server wires configuration, storage, the step-up service and the
// gRPC transport into a runnable application.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/pinkeeper/internal/lockout"
	"github.com/dmitrijs2005/pinkeeper/internal/logging"
	"github.com/dmitrijs2005/pinkeeper/internal/pinhash"
	"github.com/dmitrijs2005/pinkeeper/internal/server/auth"
	"github.com/dmitrijs2005/pinkeeper/internal/server/config"
	"github.com/dmitrijs2005/pinkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/pinkeeper/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	stores  *stores
	service *services.StepUpService
	grants  *auth.GrantIssuer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	hasher, err := pinhash.New(c.HashParams())
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	st, err := openStores(ctx, c)
	if err != nil {
		return nil, err
	}

	opts := []lockout.Option{
		lockout.WithPolicy(c.Policy()),
		lockout.WithLogger(logger.With("module", "lockout")),
	}
	if st.serializer != nil {
		opts = append(opts, lockout.WithSerializer(st.serializer))
	}
	ledger, err := lockout.NewLedger(st.attempts, opts...)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	grants := auth.NewGrantIssuer([]byte(c.SecretKey), c.GrantValidityDuration)
	svc := services.NewStepUpService(ledger, st.credentials, hasher,
		services.WithGrantIssuer(grants),
		services.WithLogger(logger.With("module", "stepup")),
	)

	return &App{config: c, logger: logger, stores: st, service: svc, grants: grants}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Run serves the gRPC API until ctx is cancelled or a termination signal
// arrives, then releases the stores.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	stopSignals := app.initSignalHandler(cancelFunc)
	defer stopSignals()

	app.logger.Info(ctx, "Starting app...", "backend", app.config.LedgerBackend)

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.service, app.grants, app.config.SecretKey)
	runErr := s.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", runErr)
	}

	if err := app.stores.Close(); err != nil {
		app.logger.Warn(ctx, "failed to close stores", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	return runErr
}
