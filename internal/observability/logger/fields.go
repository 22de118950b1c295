package logger

import (
	"go.uber.org/zap"

	"github.com/dropDatabas3/authhub/internal/util"
)

// ---- HTTP ----

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field { return zap.String("method", v) }
func Path(v string) zap.Field { return zap.String("path", v) }
func Route(v string) zap.Field { return zap.String("route", v) }
func Status(v int) zap.Field { return zap.Int("status", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

// ---- Dominio ----

func UserID(v int64) zap.Field { return zap.Int64("user_id", v) }
func ConnectionID(v int64) zap.Field { return zap.Int64("connection_id", v) }
func ProviderName(v string) zap.Field {
	return zap.String("provider", v)
}
func EventType(v string) zap.Field { return zap.String("event_type", v) }

// Email loguea el email enmascarado (j…@e….com).
func Email(v string) zap.Field { return zap.String("email", util.MaskEmail(v)) }

// ---- Sistema ----

// Component identifica el módulo que loguea.
func Component(v string) zap.Field { return zap.String("component", v) }

// Op identifica la operación en curso.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer: handler, service, repository.
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

// ---- Genéricos ----

func Count(v int) zap.Field { return zap.Int("count", v) }
func ID(v int64) zap.Field { return zap.Int64("id", v) }
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
func String(key, v string) zap.Field { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
func Int64(key string, v int64) zap.Field { return zap.Int64(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
