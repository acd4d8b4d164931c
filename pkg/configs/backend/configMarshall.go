package backend

import (
	"fmt"
	"time"

	"github.com/musecrm/museflow/pkg/saga"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
//
// All types named `pkg/configs/backend.XxxMarshall` are `Marshalled[*Xxx]` .
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

type BackendConfigMarshall struct {
	Port       int32                     `yaml:"port"`
	Database   string                    `yaml:"database"`
	Workflow   *WorkflowConfigMarshall   `yaml:"workflow,omitempty"`
	Processors *ProcessorsConfigMarshall `yaml:"processors"`
	Cache      *CacheConfigMarshall      `yaml:"cache,omitempty"`
	Events     *EventsConfigMarshall     `yaml:"events,omitempty"`
	Metrics    *MetricsConfigMarshall    `yaml:"metrics,omitempty"`
}

var _ Marshalled[*BackendConfig] = &BackendConfigMarshall{}

func (b *BackendConfigMarshall) trySeal(path string) *BackendConfig {
	workflow := b.Workflow
	if workflow == nil {
		workflow = &WorkflowConfigMarshall{}
	}
	cache := b.Cache
	if cache == nil {
		cache = &CacheConfigMarshall{}
	}

	conf := &BackendConfig{
		port:       required(b.Port, path+".port"),
		database:   required(b.Database, path+".database"),
		workflow:   workflow.trySeal(path + ".workflow"),
		processors: nonnil(b.Processors, path+".processors").trySeal(path + ".processors"),
		cache:      cache.trySeal(path + ".cache"),
	}
	if b.Events != nil {
		conf.events = b.Events.trySeal(path + ".events")
	}
	if b.Metrics != nil {
		conf.metrics = b.Metrics.trySeal(path + ".metrics")
	}
	return conf
}

type RetryConfigMarshall struct {
	Interval    time.Duration `yaml:"interval,omitempty"`
	BackoffRate float64       `yaml:"backoffRate,omitempty"`
	MaxAttempts *uint         `yaml:"maxAttempts,omitempty"`
}

func (r *RetryConfigMarshall) trySeal(path string) saga.RetryPolicy {
	p := saga.DefaultRetryPolicy()
	if r == nil {
		return p
	}
	if r.Interval != 0 {
		p.Interval = positive(r.Interval, path+".interval")
	}
	if r.BackoffRate != 0 {
		if r.BackoffRate < 1 {
			panic(fmt.Sprintf("%s.backoffRate should be 1 or more", path))
		}
		p.BackoffRate = r.BackoffRate
	}
	if r.MaxAttempts != nil {
		p.MaxAttempts = *r.MaxAttempts
	}
	return p
}

type WorkflowConfigMarshall struct {
	Retry          *RetryConfigMarshall `yaml:"retry,omitempty"`
	Timeout        time.Duration        `yaml:"timeout,omitempty"`
	Lease          time.Duration        `yaml:"lease,omitempty"`
	MaxClaims      int                  `yaml:"maxClaims,omitempty"`
	HandlerTimeout time.Duration        `yaml:"handlerTimeout,omitempty"`
}

func (w *WorkflowConfigMarshall) trySeal(path string) *WorkflowConfig {
	conf := &WorkflowConfig{
		retry:          w.Retry.trySeal(path + ".retry"),
		timeout:        orDefault(positive(w.Timeout, path+".timeout"), 10*time.Minute),
		maxClaims:      orDefault(positive(w.MaxClaims, path+".maxClaims"), 3),
		handlerTimeout: orDefault(positive(w.HandlerTimeout, path+".handlerTimeout"), time.Minute),
	}
	conf.lease = orDefault(positive(w.Lease, path+".lease"), conf.timeout+conf.handlerTimeout+time.Minute)
	if conf.lease <= conf.timeout+conf.handlerTimeout {
		panic(fmt.Sprintf(
			"%s.lease should be longer than timeout + handlerTimeout (%s)",
			path, conf.timeout+conf.handlerTimeout,
		))
	}
	return conf
}

type ProcessorConfigMarshall struct {
	URL string `yaml:"url"`
}

type ProcessorsConfigMarshall struct {
	Image   *ProcessorConfigMarshall `yaml:"image"`
	Audio   *ProcessorConfigMarshall `yaml:"audio"`
	QRCode  *ProcessorConfigMarshall `yaml:"qrCode"`
	Delete  *ProcessorConfigMarshall `yaml:"delete"`
	Timeout time.Duration            `yaml:"timeout,omitempty"`
}

func (p *ProcessorsConfigMarshall) trySeal(path string) *ProcessorsConfig {
	url := func(c *ProcessorConfigMarshall, name string) string {
		return required(nonnil(c, path+"."+name).URL, path+"."+name+".url")
	}
	return &ProcessorsConfig{
		image:   url(p.Image, "image"),
		audio:   url(p.Audio, "audio"),
		qrCode:  url(p.QRCode, "qrCode"),
		delete:  url(p.Delete, "delete"),
		timeout: orDefault(positive(p.Timeout, path+".timeout"), 30*time.Second),
	}
}

type CacheConfigMarshall struct {
	Type  string                    `yaml:"type,omitempty"`
	HTTP  *CacheHTTPConfigMarshall  `yaml:"http,omitempty"`
	Redis *CacheRedisConfigMarshall `yaml:"redis,omitempty"`
}

func (c *CacheConfigMarshall) trySeal(path string) *CacheConfig {
	switch CacheType(c.Type) {
	case "", CacheNone:
		return &CacheConfig{typ: CacheNone}
	case CacheHTTP:
		return &CacheConfig{
			typ:  CacheHTTP,
			http: nonnil(c.HTTP, path+".http").trySeal(path + ".http"),
		}
	case CacheRedis:
		return &CacheConfig{
			typ:   CacheRedis,
			redis: nonnil(c.Redis, path+".redis").trySeal(path + ".redis"),
		}
	default:
		panic(fmt.Sprintf("%s.type should be one of http, redis or none: %s", path, c.Type))
	}
}

type CacheHTTPConfigMarshall struct {
	URL string `yaml:"url"`
}

func (c *CacheHTTPConfigMarshall) trySeal(path string) *CacheHTTPConfig {
	return &CacheHTTPConfig{url: required(c.URL, path+".url")}
}

type CacheRedisConfigMarshall struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

func (c *CacheRedisConfigMarshall) trySeal(path string) *CacheRedisConfig {
	return &CacheRedisConfig{
		address:  required(c.Address, path+".address"),
		password: c.Password,
		db:       c.DB,
		prefix:   c.Prefix,
	}
}

type EventsConfigMarshall struct {
	Kafka *KafkaConfigMarshall `yaml:"kafka"`
}

func (e *EventsConfigMarshall) trySeal(path string) *EventsConfig {
	return &EventsConfig{
		kafka: nonnil(e.Kafka, path+".kafka").trySeal(path + ".kafka"),
	}
}

type KafkaConfigMarshall struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

func (k *KafkaConfigMarshall) trySeal(path string) *KafkaConfig {
	if len(k.Brokers) == 0 {
		panic(path + ".brokers is required")
	}
	return &KafkaConfig{
		brokers: append([]string{}, k.Brokers...),
		topic:   required(k.Topic, path+".topic"),
	}
}

type MetricsConfigMarshall struct {
	Address string `yaml:"address"`
}

func (m *MetricsConfigMarshall) trySeal(path string) *MetricsConfig {
	return &MetricsConfig{address: required(m.Address, path+".address")}
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}

func positive[T int | time.Duration](v T, path string) T {
	if v < 0 {
		panic(path + " should not be negative")
	}
	return v
}

func orDefault[T comparable](v T, def T) T {
	if v == *new(T) {
		return def
	}
	return v
}
