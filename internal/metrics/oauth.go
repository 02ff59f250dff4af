package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OAuth-related Prometheus metrics. Defined in a standalone package so the
// service layer can record them without importing the HTTP packages.

var (
	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oauth_logins_total",
		Help: "Intentos de login por resultado",
	}, []string{"result"}) // result: ok|unauthorized_client|invalid_credentials|error

	TokenExchangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oauth_token_exchanges_total",
		Help: "Exchanges del token endpoint por grant_type y resultado",
	}, []string{"grant_type", "result"}) // result: ok|invalid_client|invalid_grant|unsupported|error
)

// RegisterOAuth registers the OAuth metrics on the given registry (or default if nil).
func RegisterOAuth(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{LoginsTotal, TokenExchangesTotal} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
