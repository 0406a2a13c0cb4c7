package infra

import (
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"

	"catrank.dev/backend/internal/app/appconfig"
	"catrank.dev/backend/internal/pkg/bininfo"
)

// SentryInit initializes sentry with side-effect
func SentryInit(conf *appconfig.Config) error {
	if conf.SentryDSN == "" {
		log.Warn().
			Str("evt.name", "infra.sentry.disabled").
			Msg("Sentry is disabled due to missing DSN.")
		return nil
	}

	log.Info().
		Str("evt.name", "infra.sentry.init").
		Msg("Initializing Sentry...")

	return sentry.Init(sentry.ClientOptions{
		Dsn:              conf.SentryDSN,
		Release:          "catrank-backend@" + bininfo.Version,
		Debug:            conf.DevMode,
		AttachStacktrace: true,
		TracesSampleRate: 0.01,
	})
}
