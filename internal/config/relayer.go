package config

import (
	"net/http"
	"net/url"
	"time"

	"gitlab.com/distributed_lab/figure/v3"
	jsonapi "gitlab.com/distributed_lab/json-api-connector"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
	"gitlab.com/tokend/connectors/signed"
)

// RelayerClient is the resolver's connection to the relayer API.
type RelayerClient struct {
	Connector *jsonapi.Connector
	Endpoint  *url.URL
}

func (c *config) RelayerClient() RelayerClient {
	return c.relayerOnce.Do(func() interface{} {
		var cfg struct {
			Endpoint       *url.URL      `fig:"endpoint,required"`
			RequestTimeout time.Duration `fig:"request_timeout"`
		}
		err := figure.Out(&cfg).
			From(kv.MustGetStringMap(c.getter, "relayer")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out relayer"))
		}

		if cfg.RequestTimeout == 0 {
			cfg.RequestTimeout = defaultRequestTimeout
		}

		return RelayerClient{
			Connector: jsonapi.NewConnector(signed.NewClient(&http.Client{Timeout: cfg.RequestTimeout}, cfg.Endpoint)),
			Endpoint:  cfg.Endpoint,
		}
	}).(RelayerClient)
}
