package log

import (
	"go.uber.org/zap"
)

type Field = zap.Field

var (
	Skip     = zap.Skip
	String   = zap.String
	Strings  = zap.Strings
	Bool     = zap.Bool
	Int      = zap.Int
	Int64    = zap.Int64
	Uint     = zap.Uint
	Uint64   = zap.Uint64
	Float64  = zap.Float64
	Float64s = zap.Float64s
	Any      = zap.Any
	Duration = zap.Duration
	Time     = zap.Time
	Stringer = zap.Stringer
)

// ErrorField is named this way to avoid the clash with the Error logging function
func ErrorField(err error) Field {
	return zap.Error(err)
}
