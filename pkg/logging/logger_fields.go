package logging

import (
	"fmt"
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain fields

func Component(name string) Field {
	return String("component", name)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Node(id uint64) Field {
	return Uint64("node", id)
}

// Coords renders a coordinate tuple the way it appears in records, e.g. "(0,3,1)".
func Coords(key string, c []int) Field {
	s := "("
	for i, v := range c {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprint(v)
	}
	return String(key, s+")")
}

func Algorithm(name string) Field {
	return String("algorithm", name)
}

// Cube identifies an instance by its parameters.
func Cube(n, k, r, h int) Field {
	return String("cube", fmt.Sprintf("n=%d,k=%d,r=%d,h=%d", n, k, r, h))
}

func Instance(i int) Field {
	return Int("instance", i)
}

func Trial(i int) Field {
	return Int("trial", i)
}

func Seed(s uint64) Field {
	return Uint64("seed", s)
}

func RunID(id string) Field {
	return String("run_id", id)
}
