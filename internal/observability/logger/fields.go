package logger

import (
	"time"

	"github.com/dropDatabas3/socialauth/internal/util"
	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// UserAgent crea un campo para el User-Agent.
func UserAgent(v string) zap.Field {
	return zap.String("user_agent", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - OAUTH
// =================================================================================

// Provider crea un campo para el nombre del provider (github, alipay, ...).
func Provider(v string) zap.Field {
	return zap.String("provider", v)
}

// State crea un campo para el state CSRF, enmascarado.
func State(v string) zap.Field {
	return zap.String("state", util.MaskToken(v))
}

// FlowStatus crea un campo para el tipo de respuesta del flujo.
func FlowStatus(v string) zap.Field {
	return zap.String("flow_status", v)
}

// Code crea un campo para el código numérico de una respuesta.
func Code(v int) zap.Field {
	return zap.Int("code", v)
}

// UserUUID crea un campo para el uuid normalizado del usuario.
func UserUUID(v string) zap.Field {
	return zap.String("user_uuid", v)
}

// Email crea un campo para el email, enmascarado.
func Email(v string) zap.Field {
	return zap.String("email", util.MaskEmail(v))
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (handler, engine, adapter).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// =================================================================================
// CAMPOS ESTÁNDAR - DATOS
// =================================================================================

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}
