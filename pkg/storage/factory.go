package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/yi-nology/easy_fm/pkg/errs"
	"github.com/yi-nology/easy_fm/pkg/storage/local"
	"github.com/yi-nology/easy_fm/pkg/storage/s3"
)

// Built-in backend kinds.
const (
	KindS3    = "s3"
	KindLocal = "local"
)

// Constructor builds a backend from its serialized configuration.
type Constructor func(config []byte) (Backend, error)

var (
	mu           sync.RWMutex
	constructors = map[string]Constructor{}
)

func init() {
	Register(KindS3, func(raw []byte) (Backend, error) {
		var cfg s3.Config
		if err := decodeConfig(raw, &cfg); err != nil {
			return nil, err
		}
		return s3.New(cfg)
	})
	Register(KindLocal, func(raw []byte) (Backend, error) {
		var cfg local.Config
		if err := decodeConfig(raw, &cfg); err != nil {
			return nil, err
		}
		return local.New(cfg.BasePath)
	})
}

// Register makes a backend kind available to New. Registering a kind twice
// replaces the earlier constructor.
func Register(kind string, c Constructor) {
	mu.Lock()
	defer mu.Unlock()
	constructors[kind] = c
}

// Kinds returns the registered backend kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(constructors))
	for k := range constructors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// New builds a backend of the given kind. Unknown kinds and configurations
// the constructor rejects are reported as errs.ErrConfig.
func New(kind string, config []byte) (Backend, error) {
	mu.RLock()
	c, ok := constructors[kind]
	mu.RUnlock()
	if !ok {
		return nil, errs.Config(fmt.Errorf("unsupported storage type: %s", kind))
	}
	b, err := c(config)
	if err != nil {
		return nil, errs.Config(err)
	}
	return b, nil
}

// EncodeConfig serializes a backend configuration into the payload stored in
// the catalog.
func EncodeConfig(cfg any) ([]byte, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, errs.Config(err)
	}
	return data, nil
}

func decodeConfig(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Config(fmt.Errorf("decode config: %w", err))
	}
	return nil
}

var secretFields = []string{"secret_key", "password"}

// Redact returns config with secret fields masked, for display. Payloads that
// are not JSON objects yield nil.
func Redact(config []byte) json.RawMessage {
	var fields map[string]any
	if err := json.Unmarshal(config, &fields); err != nil {
		return nil
	}
	for _, name := range secretFields {
		if _, ok := fields[name]; ok {
			fields[name] = "******"
		}
	}
	masked, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return masked
}
