package logx

import "time"

// Logger is the structured logger every package writes to.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

// Kind tells a backend how to encode a field value.
type Kind uint8

const (
	KindAny Kind = iota
	KindString
	KindInt64
	KindBool
	KindFloat64
	KindTime
	KindDuration
)

// Field is a typed key-value pair.
type Field struct {
	Key   string
	Kind  Kind
	Value any
}

func Any(key string, value any) Field { return Field{Key: key, Kind: KindAny, Value: value} }

func String(key, value string) Field { return Field{Key: key, Kind: KindString, Value: value} }

// Int is stored as int64 so both backends see one integer type.
func Int(key string, value int) Field { return Int64(key, int64(value)) }

func Int64(key string, value int64) Field { return Field{Key: key, Kind: KindInt64, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Kind: KindBool, Value: value} }

func Float64(key string, value float64) Field {
	return Field{Key: key, Kind: KindFloat64, Value: value}
}

func Time(key string, value time.Time) Field { return Field{Key: key, Kind: KindTime, Value: value} }

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Kind: KindDuration, Value: value}
}

// Err is the "error" field; nil gives an empty string.
func Err(err error) Field {
	if err == nil {
		return String("error", "")
	}
	return String("error", err.Error())
}
