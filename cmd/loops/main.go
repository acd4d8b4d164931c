package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/musecrm/museflow/cmd/loops/hook"
	"github.com/musecrm/museflow/cmd/loops/tasks/orchestrate"
	museflow "github.com/musecrm/museflow/pkg"
	"github.com/musecrm/museflow/pkg/buildtime"
	configs "github.com/musecrm/museflow/pkg/configs/backend"
	cfg_hook "github.com/musecrm/museflow/pkg/configs/hook"
	khttp "github.com/musecrm/museflow/pkg/conn/http"
	"github.com/musecrm/museflow/pkg/domain"
	kpg "github.com/musecrm/museflow/pkg/domain/museflow/db/postgres"
	"github.com/musecrm/museflow/pkg/loop/recurring"
	"github.com/musecrm/museflow/pkg/metrics"
	"github.com/musecrm/museflow/pkg/saga"
	"github.com/musecrm/museflow/pkg/utils/args"
	"github.com/musecrm/museflow/pkg/utils/filewatch"
	"github.com/musecrm/museflow/pkg/utils/try"
	"github.com/musecrm/museflow/pkg/workflows"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	// call cancel() when this function exits
	defer cancel()

	// define command line flags
	//-- path to config file
	pconfig := flag.String(
		"config", os.Getenv("MUSEFLOW_CONFIG"), "path to config file",
	)
	pSchemaRepo := flag.String(
		"schema-repo", os.Getenv("MUSEFLOW_SCHEMA"), "schema repository path",
	)
	phooks := flag.String(
		"hooks", os.Getenv("MUSEFLOW_HOOK_CONFIG"), "path to hook config file",
	)
	pworkers := flag.Int("workers", 4, "number of workers running executions concurrently")
	ploglevel := args.New(logrus.ParseLevel, logrus.InfoLevel)
	flag.Var(ploglevel, "loglevel", "log level (trace|debug|info|warn|error)")
	//-- loop policy
	policy := args.New(recurring.ParsePolicy, recurring.Forever(5*time.Second))
	flag.Var(
		policy, "policy",
		`loop policy (syntax: forever[:COOLDOWN]|backlog).`+
			` "forever[:COOLDOWN]" = run forever until error. When backlog is over, `+
			`wait COOLDOWN (optional duration. default: 5s) as interval.`+
			` "backlog" = run until error or backlog is over.`,
	)
	for env, v := range map[string]interface{ FromEnv(string) error }{
		"MUSEFLOW_LOGLEVEL": ploglevel,
		"MUSEFLOW_POLICY":   policy,
	} {
		if err := v.FromEnv(env); err != nil {
			logger.Fatal(err)
		}
	}
	// parse command line flags. flags win over environment variables.
	flag.Parse()
	logger.SetLevel(ploglevel.Get())

	if *pworkers < 1 {
		logger.Fatalf("-workers should be 1 or more: %d", *pworkers)
	}

	{
		// watch config & hooks
		wctx, cancel, err := filewatch.UntilModifyContext(ctx, *pconfig, *phooks)
		if err != nil {
			logger.Fatal(err)
		}
		defer cancel()
		ctx = wctx
	}

	conf := try.To(configs.LoadBackendConfig(*pconfig)).OrFatal(logger)
	db := try.To(kpg.New(ctx, conf.Database(), kpg.WithSchemaRepository(*pSchemaRepo))).OrFatal(logger)
	defer db.Close()

	{
		ctx_, ccan := db.Schema().Context(ctx)
		defer ccan()
		ctx = ctx_
	}

	mf := museflow.Attach(conf, db, logger)
	defer mf.Close()

	hooks := cfg_hook.Config{}
	if hookPath := *phooks; hookPath != "" {
		hooks = try.To(cfg_hook.Load(hookPath)).OrFatal(logger)
	}

	wconf := conf.Workflow()
	registry := try.To(workflows.NewRegistry(
		mf.Steps(), workflows.Options{Retry: wconf.Retry()},
	)).OrFatal(logger)

	m := metrics.New()
	if mc := conf.Metrics(); mc != nil {
		server := &http.Server{Addr: mc.Address(), Handler: m.Handler()}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("metrics server stopped")
			}
		}()
		defer server.Shutdown(context.WithoutCancel(ctx))
	}

	manifest := LoopManifest{
		Policy: recurring.UntilError(policy.Get()),
		Hooks:  hook.Build(hooks.Lifecycle, khttp.NewClient(30*time.Second)),
		Orchestrate: orchestrate.Config{
			Timeout:   wconf.Timeout(),
			MaxClaims: wconf.MaxClaims(),
		},
		Lease: wconf.Lease(),
	}

	logger.WithFields(logrus.Fields{
		"version": buildtime.VersionString(),
		"workers": *pworkers,
		"policy":  policy.Get().String(),
	}).Info("start workers")

	eg, ectx := errgroup.WithContext(ctx)
	for i := range *pworkers {
		wlog := logger.WithField("loop", fmt.Sprintf("orchestrate-%d", i))
		runner := workflows.NewRunner(
			registry,
			saga.New[domain.Execution](
				saga.WithLogger(wlog),
				saga.WithObserver(m),
				saga.WithHandlerTimeout(wconf.HandlerTimeout()),
			),
			wlog,
		)
		eg.Go(func() error {
			return StartOrchestrateLoop(
				ectx, wlog, db.Workflow(), runner, mf.Notifier(), m, manifest,
			)
		})
	}

	err := eg.Wait()
	if err == nil {
		return
	} else if errors.Is(err, context.Canceled) {
		logger.WithError(err).Warn("loop context is cancelled by: ", context.Cause(ctx))
		return
	}
	logger.Fatal(err)
}
