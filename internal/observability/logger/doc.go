// Package logger expone un logger Zap singleton con scoping por contexto.
//
// Inicialización (una vez, en main):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Logging.Level, ServiceName: "authhub"})
//	defer logger.Sync()
//
// En handlers y services:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("CompleteLogin"))
//	log.Info("login completed", logger.UserID(uid))
//
// Nunca loguear access tokens, refresh tokens, authorization codes ni secretos.
package logger
