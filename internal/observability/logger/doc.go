// Package logger provee el logger Zap del proceso con scoping por contexto.
//
// # Design Decisions
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Context Scoping: cada flujo OAuth (authorize/login/refresh/revoke) usa un
//     logger "scoped" con provider y op, sin crear un nuevo core.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Secretos: client_secret, tokens y claves privadas nunca se loguean; el
//     state CSRF y los emails se enmascaran en los field helpers.
//
// # Usage
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
// En el engine y los adapters:
//
//	log := logger.From(ctx).With(logger.Provider("github"), logger.Op("Login"))
//	log.Info("login ok", logger.UserUUID(u.UUID))
package logger
