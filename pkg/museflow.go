package museflow

import (
	"errors"
	"time"

	"github.com/musecrm/museflow/pkg/assets"
	assetshttp "github.com/musecrm/museflow/pkg/assets/http"
	"github.com/musecrm/museflow/pkg/cdn"
	cdnhttp "github.com/musecrm/museflow/pkg/cdn/http"
	cdnredis "github.com/musecrm/museflow/pkg/cdn/redis"
	bconf "github.com/musecrm/museflow/pkg/configs/backend"
	khttp "github.com/musecrm/museflow/pkg/conn/http"
	"github.com/musecrm/museflow/pkg/domain"
	kdb "github.com/musecrm/museflow/pkg/domain/museflow/db"
	"github.com/musecrm/museflow/pkg/events"
	kevents "github.com/musecrm/museflow/pkg/events/kafka"
	"github.com/musecrm/museflow/pkg/workflows"
	"github.com/sirupsen/logrus"
)

// Museflow is the set of collaborators of workflows, built from config.
type Museflow interface {
	Config() *bconf.BackendConfig
	Database() kdb.Database

	// Steps are actions of workflows, backed by the database, processors and the cache.
	Steps() workflows.Steps

	Notifier() events.Notifier

	// Close releases connections other than the database.
	Close() error
}

type museflow struct {
	config   *bconf.BackendConfig
	database kdb.Database
	steps    workflows.Steps
	notifier events.Notifier
	closers  []func() error
}

var _ Museflow = &museflow{}

// Attach builds collaborators for config over the database.
func Attach(config *bconf.BackendConfig, database kdb.Database, log logrus.FieldLogger) Museflow {
	m := &museflow{config: config, database: database}

	cache, closeCache := BuildCache(config.Cache(), config.Processors().Timeout(), log)
	if closeCache != nil {
		m.closers = append(m.closers, closeCache)
	}
	m.steps = workflows.Steps{
		Entities:      database.Entity(),
		Subscriptions: database.Subscription(),
		Processors:    BuildProcessors(config.Processors()),
		Cache:         cache,
		Log:           log,
	}

	notifier, closeNotifier := BuildNotifier(config.Events(), log)
	if closeNotifier != nil {
		m.closers = append(m.closers, closeNotifier)
	}
	m.notifier = notifier
	return m
}

func (m *museflow) Config() *bconf.BackendConfig {
	return m.config
}

func (m *museflow) Database() kdb.Database {
	return m.database
}

func (m *museflow) Steps() workflows.Steps {
	return m.steps
}

func (m *museflow) Notifier() events.Notifier {
	return m.notifier
}

func (m *museflow) Close() error {
	var errs []error
	for _, c := range m.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// BuildProcessors makes an HTTP processor for each asset kind.
func BuildProcessors(conf *bconf.ProcessorsConfig) assets.Processors {
	client := khttp.NewClient(conf.Timeout())
	return assets.Processors{
		domain.Images:       assetshttp.New(client, conf.Image()),
		domain.Audios:       assetshttp.New(client, conf.Audio()),
		domain.QRCode:       assetshttp.New(client, conf.QRCode()),
		domain.DeleteAssets: assetshttp.New(client, conf.Delete()),
	}
}

// BuildCache makes the invalidator of the configured type.
//
// The returned func closes its connection. It is nil when there is nothing to close.
func BuildCache(conf *bconf.CacheConfig, timeout time.Duration, log logrus.FieldLogger) (cdn.Invalidator, func() error) {
	switch conf.Type() {
	case bconf.CacheHTTP:
		return cdnhttp.New(khttp.NewClient(timeout), conf.HTTP().URL()), nil
	case bconf.CacheRedis:
		r := conf.Redis()
		client := cdnredis.NewClient(r.Address(), r.Password(), r.DB())
		return cdnredis.New(client, r.Prefix()), client.Close
	default:
		return cdn.None{Log: log}, nil
	}
}

// BuildNotifier makes the kafka notifier if configured, or the one only logging.
func BuildNotifier(conf *bconf.EventsConfig, log logrus.FieldLogger) (events.Notifier, func() error) {
	if conf == nil || conf.Kafka() == nil {
		return events.None{Log: log}, nil
	}
	k := conf.Kafka()
	n := kevents.New(kevents.NewWriter(k.Brokers(), k.Topic()))
	return n, n.Close
}
