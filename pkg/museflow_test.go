package museflow_test

import (
	"io"
	"testing"

	museflow "github.com/musecrm/museflow/pkg"
	"github.com/musecrm/museflow/pkg/cdn"
	cdnhttp "github.com/musecrm/museflow/pkg/cdn/http"
	cdnredis "github.com/musecrm/museflow/pkg/cdn/redis"
	bconf "github.com/musecrm/museflow/pkg/configs/backend"
	"github.com/musecrm/museflow/pkg/domain"
	"github.com/musecrm/museflow/pkg/events"
	kevents "github.com/musecrm/museflow/pkg/events/kafka"
	"github.com/musecrm/museflow/pkg/utils/try"
	"github.com/sirupsen/logrus"
)

const processors = `
port: 8080
database: postgres://db/museflow
processors:
  image: {url: http://i}
  audio: {url: http://a}
  qrCode: {url: http://q}
  delete: {url: http://d}
`

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestBuildProcessors(t *testing.T) {
	conf := try.To(bconf.Unmarshal([]byte(processors))).OrFatal(t)
	actual := museflow.BuildProcessors(conf.Processors())

	for _, kind := range []domain.AssetKind{domain.Images, domain.Audios, domain.QRCode, domain.DeleteAssets} {
		if _, ok := actual[kind]; !ok {
			t.Errorf("no processor for %s", kind)
		}
	}
}

func TestBuildCache(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		conf := try.To(bconf.Unmarshal([]byte(processors))).OrFatal(t)
		actual, closer := museflow.BuildCache(conf.Cache(), conf.Processors().Timeout(), quiet())
		if _, ok := actual.(cdn.None); !ok || closer != nil {
			t.Errorf("actual=%T", actual)
		}
	})

	t.Run("http", func(t *testing.T) {
		conf := try.To(bconf.Unmarshal([]byte(processors + "cache: {type: http, http: {url: http://purge}}\n"))).OrFatal(t)
		actual, _ := museflow.BuildCache(conf.Cache(), conf.Processors().Timeout(), quiet())
		if _, ok := actual.(*cdnhttp.Invalidator); !ok {
			t.Errorf("actual=%T", actual)
		}
	})

	t.Run("redis", func(t *testing.T) {
		conf := try.To(bconf.Unmarshal([]byte(processors + "cache: {type: redis, redis: {address: \"localhost:6379\"}}\n"))).OrFatal(t)
		actual, closer := museflow.BuildCache(conf.Cache(), conf.Processors().Timeout(), quiet())
		if _, ok := actual.(*cdnredis.Invalidator); !ok {
			t.Errorf("actual=%T", actual)
		}
		if closer == nil {
			t.Fatal("redis client should be closed")
		}
		closer()
	})
}

func TestBuildNotifier(t *testing.T) {
	t.Run("without events config", func(t *testing.T) {
		actual, closer := museflow.BuildNotifier(nil, quiet())
		if _, ok := actual.(events.None); !ok || closer != nil {
			t.Errorf("actual=%T", actual)
		}
	})

	t.Run("with kafka", func(t *testing.T) {
		conf := try.To(bconf.Unmarshal([]byte(
			processors + "events: {kafka: {brokers: [\"localhost:9092\"], topic: executions}}\n",
		))).OrFatal(t)
		actual, closer := museflow.BuildNotifier(conf.Events(), quiet())
		if _, ok := actual.(*kevents.Notifier); !ok {
			t.Errorf("actual=%T", actual)
		}
		if closer == nil {
			t.Fatal("kafka writer should be closed")
		}
		closer()
	})
}
