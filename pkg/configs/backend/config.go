package backend

import (
	"time"

	"github.com/musecrm/museflow/pkg/saga"
)

// BackendConfig is the configuration of the backend api server and the workers.
//
// To get one, use `Unmarshal` or `LoadBackendConfig`.
type BackendConfig struct {
	port       int32
	database   string
	workflow   *WorkflowConfig
	processors *ProcessorsConfig
	cache      *CacheConfig
	events     *EventsConfig
	metrics    *MetricsConfig
}

func (c *BackendConfig) Port() int32 {
	return c.port
}

// Connection string for database.
func (c *BackendConfig) Database() string {
	return c.database
}

func (c *BackendConfig) Workflow() *WorkflowConfig {
	return c.workflow
}

func (c *BackendConfig) Processors() *ProcessorsConfig {
	return c.processors
}

func (c *BackendConfig) Cache() *CacheConfig {
	return c.cache
}

// Events returns nil when no event sink is configured.
func (c *BackendConfig) Events() *EventsConfig {
	return c.events
}

// Metrics returns nil when metrics are not exposed by workers.
func (c *BackendConfig) Metrics() *MetricsConfig {
	return c.metrics
}

type WorkflowConfig struct {
	retry          saga.RetryPolicy
	timeout        time.Duration
	lease          time.Duration
	maxClaims      int
	handlerTimeout time.Duration
}

// Retry policy of each task.
func (w *WorkflowConfig) Retry() saga.RetryPolicy {
	return w.retry
}

// How long an execution can run in one claim.
func (w *WorkflowConfig) Timeout() time.Duration {
	return w.timeout
}

// How long a claim lasts. Longer than Timeout and HandlerTimeout together.
func (w *WorkflowConfig) Lease() time.Duration {
	return w.lease
}

// Executions claimed more than this are abandoned.
func (w *WorkflowConfig) MaxClaims() int {
	return w.maxClaims
}

// How long catch handlers can run after the execution timeout.
func (w *WorkflowConfig) HandlerTimeout() time.Duration {
	return w.handlerTimeout
}

type ProcessorsConfig struct {
	image   string
	audio   string
	qrCode  string
	delete  string
	timeout time.Duration
}

func (p *ProcessorsConfig) Image() string {
	return p.image
}

func (p *ProcessorsConfig) Audio() string {
	return p.audio
}

func (p *ProcessorsConfig) QRCode() string {
	return p.qrCode
}

func (p *ProcessorsConfig) Delete() string {
	return p.delete
}

// Timeout of each request to processors.
func (p *ProcessorsConfig) Timeout() time.Duration {
	return p.timeout
}

type CacheType string

const (
	CacheHTTP  CacheType = "http"
	CacheRedis CacheType = "redis"
	CacheNone  CacheType = "none"
)

type CacheConfig struct {
	typ   CacheType
	http  *CacheHTTPConfig
	redis *CacheRedisConfig
}

func (c *CacheConfig) Type() CacheType {
	return c.typ
}

// HTTP is nil unless Type is CacheHTTP.
func (c *CacheConfig) HTTP() *CacheHTTPConfig {
	return c.http
}

// Redis is nil unless Type is CacheRedis.
func (c *CacheConfig) Redis() *CacheRedisConfig {
	return c.redis
}

type CacheHTTPConfig struct {
	url string
}

// URL of the purge endpoint.
func (c *CacheHTTPConfig) URL() string {
	return c.url
}

type CacheRedisConfig struct {
	address  string
	password string
	db       int
	prefix   string
}

func (c *CacheRedisConfig) Address() string {
	return c.address
}

func (c *CacheRedisConfig) Password() string {
	return c.password
}

func (c *CacheRedisConfig) DB() int {
	return c.db
}

// Prefix of cached keys. Path patterns are appended to this.
func (c *CacheRedisConfig) Prefix() string {
	return c.prefix
}

type EventsConfig struct {
	kafka *KafkaConfig
}

func (e *EventsConfig) Kafka() *KafkaConfig {
	return e.kafka
}

type KafkaConfig struct {
	brokers []string
	topic   string
}

func (k *KafkaConfig) Brokers() []string {
	return append([]string{}, k.brokers...)
}

func (k *KafkaConfig) Topic() string {
	return k.topic
}

type MetricsConfig struct {
	address string
}

// Address to listen for metrics scraping, like ":9090".
func (m *MetricsConfig) Address() string {
	return m.address
}
