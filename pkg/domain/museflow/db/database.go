package db

import (
	kentity "github.com/musecrm/museflow/pkg/domain/entity/db"
	kschema "github.com/musecrm/museflow/pkg/domain/schema/db"
	ksubscription "github.com/musecrm/museflow/pkg/domain/subscription/db"
	kworkflow "github.com/musecrm/museflow/pkg/domain/workflow/db"
)

type Database interface {
	Entity() kentity.EntityInterface
	Subscription() ksubscription.SubscriptionInterface
	Workflow() kworkflow.WorkflowInterface
	Schema() kschema.SchemaInterface
	Close() error
}
