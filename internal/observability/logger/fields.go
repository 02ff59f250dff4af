package logger

import (
	"time"

	"go.uber.org/zap"
)

// Campos estándar HTTP.

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field { return zap.String("request_id", v) }

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field { return zap.String("method", v) }

// Path crea un campo para el path del request.
func Path(v string) zap.Field { return zap.String("path", v) }

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field { return zap.Int("status", v) }

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// Campos estándar de negocio.

// UserID crea un campo para el ID del usuario.
func UserID(v string) zap.Field { return zap.String("user_id", v) }

// ClientID crea un campo para el ID del cliente OAuth.
func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// GrantType crea un campo para el grant_type de un exchange.
func GrantType(v string) zap.Field { return zap.String("grant_type", v) }

// Campos estándar de sistema.

// Op crea un campo para la operación actual.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer crea un campo para la capa (controller, service, store).
func Layer(v string) zap.Field { return zap.String("layer", v) }

// Err crea un campo para un error.
func Err(err error) zap.Field { return zap.Error(err) }

// Campos genéricos.

// String crea un campo string genérico.
func String(key, v string) zap.Field { return zap.String(key, v) }

// Int crea un campo int genérico.
func Int(key string, v int) zap.Field { return zap.Int(key, v) }

// Duration crea un campo para una duración.
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// Any crea un campo genérico para cualquier tipo.
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
