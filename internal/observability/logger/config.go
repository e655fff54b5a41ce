package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultServiceName va en el campo "service" cuando Config no trae uno.
const DefaultServiceName = "socialauth"

// Config configura el logger.
type Config struct {
	// Env: "dev" (consola con colores, default) o "prod" (JSON).
	Env string

	// Level: "debug", "info" (default), "warn", "error".
	Level string

	ServiceName string
	Version     string

	// Output recibe los logs. Default os.Stderr: el stdout del CLI queda
	// libre para URLs y secretos sellados.
	Output io.Writer
}

// redactedKeys son campos que nunca se escriben en claro, venga de donde
// venga el campo (zap.String directo, With, etc).
var redactedKeys = map[string]bool{
	"client_secret": true,
	"access_token":  true,
	"refresh_token": true,
	"id_token":      true,
	"token_secret":  true,
	"session_key":   true,
	"private_key":   true,
}

const redactedValue = "[redacted]"

func build(cfg Config) *zap.Logger {
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	prod := strings.EqualFold(strings.TrimSpace(cfg.Env), "prod")

	core := zapcore.NewCore(newEncoder(prod), zapcore.AddSync(out), zap.NewAtomicLevelAt(parseLevel(cfg.Level)))
	opts := []zap.Option{zap.AddCaller()}
	if prod {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	fields := []zap.Field{zap.String("service", cfg.ServiceName)}
	if cfg.Version != "" {
		fields = append(fields, zap.String("version", cfg.Version))
	}
	return zap.New(redactCore{core}, opts...).With(fields...)
}

func newEncoder(prod bool) zapcore.Encoder {
	if prod {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(ec)
	}
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	ec.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// redactCore reemplaza el valor de los campos de redactedKeys antes de
// llegar al encoder.
type redactCore struct {
	zapcore.Core
}

func (c redactCore) With(fields []zapcore.Field) zapcore.Core {
	return redactCore{c.Core.With(redact(fields))}
}

func (c redactCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c redactCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(e, redact(fields))
}

func redact(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, f := range fields {
		if !redactedKeys[f.Key] {
			continue
		}
		if out == nil {
			out = append([]zapcore.Field(nil), fields...)
		}
		out[i] = zap.String(f.Key, redactedValue)
	}
	if out == nil {
		return fields
	}
	return out
}

func parseLevel(lvl string) zapcore.Level {
	s := strings.ToLower(strings.TrimSpace(lvl))
	if s == "warning" {
		s = "warn"
	}
	l, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}
