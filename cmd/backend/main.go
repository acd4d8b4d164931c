package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	museflow "github.com/musecrm/museflow/pkg"
	"github.com/musecrm/museflow/pkg/buildtime"
	configs "github.com/musecrm/museflow/pkg/configs/backend"
	kpg "github.com/musecrm/museflow/pkg/domain/museflow/db/postgres"
	"github.com/musecrm/museflow/pkg/metrics"
	"github.com/musecrm/museflow/pkg/trigger"
	"github.com/musecrm/museflow/pkg/utils/filewatch"
	"github.com/sirupsen/logrus"
)

func main() {

	pconfig := flag.String(
		"config", os.Getenv("MUSEFLOW_CONFIG"), "path to config file",
	)
	schemaRepo := flag.String("schema-repo", os.Getenv("MUSEFLOW_SCHEMA"), "schema repository path")
	loglevel := flag.String("loglevel", "warn", "log level. debug|info|warn|error|off")

	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancel()

	{
		wctx, wcancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			panic(err)
		}
		defer wcancel()
		ctx = wctx
	}

	conf, err := configs.LoadBackendConfig(*pconfig)
	if err != nil {
		panic(err)
	}

	db, err := kpg.New(ctx, conf.Database(), kpg.WithSchemaRepository(*schemaRepo))
	if err != nil {
		panic(err)
	}
	{
		ctx_, ccan := db.Schema().Context(ctx)
		defer ccan()
		ctx = ctx_
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if lv, err := logrus.ParseLevel(*loglevel); err == nil {
		logger.SetLevel(lv)
	}

	mf := museflow.Attach(conf, db, logger)
	defer mf.Close()

	m := metrics.New()
	starter := trigger.New(db.Workflow(), trigger.WithRecorder(m))

	server := BuildServer(mf, starter, m.Handler(), *loglevel)
	server.Logger.Infof("museflow backend %s", buildtime.VersionString())
	for _, r := range server.Routes() {
		server.Logger.Debugf("- mount handler: %s %s", strings.ToUpper(r.Method), r.Path)
	}

	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		if err := server.Start(fmt.Sprintf(":%d", conf.Port())); err != nil && err != http.ErrServerClosed {
			ch <- err
		}
	}()

	exit := 0
	select {
	case <-ctx.Done(): // wait
		if err := ctx.Err(); err != nil {
			server.Logger.Infof("context has been done: %s, cause: %s", err, context.Cause(ctx))
			exit = 1
		}
	case err := <-ch:
		if err != nil {
			server.Logger.Error("server stops with error:", err)
			exit = 1
		}
	}

	{
		server.Logger.Info("shutting down...")
		qctx, qcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer qcancel()

		if err := server.Shutdown(qctx); err != nil {
			server.Logger.Fatalf("Shutdown with error. %+v", err)
			os.Exit(1)
		}
		mf.Close()
		db.Close()
		os.Exit(exit)
	}
}
