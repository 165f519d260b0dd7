package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	loaded sync.Map // type name -> parsed config value

	dotenvOnce sync.Once
)

// Load populates the config struct from environment variables based on its
// `env` field tags. Each struct type is parsed once per process; subsequent
// calls for the same type return the cached value so every component sees
// an identical configuration.
//
// A .env file in the working directory, if present, is loaded into the
// process environment before the first parse.
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	key := typeName[T]()
	if cached, ok := loaded.Load(key); ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	// First writer wins so concurrent loaders agree on one value.
	actual, _ := loaded.LoadOrStore(key, *v)
	*v = actual.(T)
	return nil
}

// MustLoad is Load that panics on failure. Use for configuration the
// process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

func typeName[T any]() string {
	var zero T
	if t := reflect.TypeOf(zero); t != nil {
		return t.String()
	}
	return fmt.Sprintf("%T", *new(T))
}
