package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	kpool "github.com/musecrm/museflow/pkg/conn/db/postgres/pool"
	kentity "github.com/musecrm/museflow/pkg/domain/entity/db"
	kpgentity "github.com/musecrm/museflow/pkg/domain/entity/db/postgres"
	dbInterface "github.com/musecrm/museflow/pkg/domain/museflow/db"
	kschema "github.com/musecrm/museflow/pkg/domain/schema/db"
	kpgschema "github.com/musecrm/museflow/pkg/domain/schema/db/postgres"
	ksubscription "github.com/musecrm/museflow/pkg/domain/subscription/db"
	kpgsubscription "github.com/musecrm/museflow/pkg/domain/subscription/db/postgres"
	kworkflow "github.com/musecrm/museflow/pkg/domain/workflow/db"
	kpgworkflow "github.com/musecrm/museflow/pkg/domain/workflow/db/postgres"
	xe "github.com/musecrm/museflow/pkg/errors"
)

type museflowPostgres struct {
	pool         kpool.Pool
	entity       kentity.EntityInterface
	subscription ksubscription.SubscriptionInterface
	workflow     kworkflow.WorkflowInterface
	schema       kschema.SchemaInterface
}

type Config struct {
	SchemaRepository string
}

type Option func(*Config) *Config

func WithSchemaRepository(repository string) Option {
	return func(c *Config) *Config {
		c.SchemaRepository = repository
		return c
	}
}

// New connects to the database at url.
func New(ctx context.Context, url string, options ...Option) (dbInterface.Database, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	c := Config{}
	for _, option := range options {
		c = *option(&c)
	}

	return Wrap(kpool.Wrap(pool), c), nil
}

// Wrap builds Database over an existing pool.
func Wrap(p kpool.Pool, c Config) dbInterface.Database {
	schema := kpgschema.Null()
	if c.SchemaRepository != "" {
		schema = kpgschema.New(p, c.SchemaRepository)
	}

	return &museflowPostgres{
		pool:         p,
		entity:       kpgentity.New(p),
		subscription: kpgsubscription.New(p),
		workflow:     kpgworkflow.New(p),
		schema:       schema,
	}
}

func (m *museflowPostgres) Entity() kentity.EntityInterface {
	return m.entity
}

func (m *museflowPostgres) Subscription() ksubscription.SubscriptionInterface {
	return m.subscription
}

func (m *museflowPostgres) Workflow() kworkflow.WorkflowInterface {
	return m.workflow
}

func (m *museflowPostgres) Schema() kschema.SchemaInterface {
	return m.schema
}

func (m *museflowPostgres) Close() error {
	m.pool.Close()
	return nil
}
