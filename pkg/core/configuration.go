package core

import (
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Configuration is a string-keyed settings map. Values are stored as strings
// and parsed by the typed getters, which fall back to the given default when
// a key is missing or its value does not parse.
type Configuration struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewConfiguration() *Configuration {
	return &Configuration{values: make(map[string]string)}
}

func (c *Configuration) SetString(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = make(map[string]string)
	}
	c.values[key] = value
}

func (c *Configuration) SetInt(key string, value int) {
	c.SetString(key, strconv.Itoa(value))
}

func (c *Configuration) SetInt64(key string, value int64) {
	c.SetString(key, strconv.FormatInt(value, 10))
}

func (c *Configuration) SetBool(key string, value bool) {
	c.SetString(key, strconv.FormatBool(value))
}

func (c *Configuration) SetDuration(key string, value time.Duration) {
	c.SetString(key, value.String())
}

func (c *Configuration) lookup(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.values[key]
	return value, ok
}

func (c *Configuration) GetString(key, defaultValue string) string {
	if value, ok := c.lookup(key); ok {
		return value
	}
	return defaultValue
}

func (c *Configuration) GetInt(key string, defaultValue int) int {
	value, ok := c.lookup(key)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (c *Configuration) GetInt64(key string, defaultValue int64) int64 {
	value, ok := c.lookup(key)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (c *Configuration) GetBool(key string, defaultValue bool) bool {
	value, ok := c.lookup(key)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (c *Configuration) GetDuration(key string, defaultValue time.Duration) time.Duration {
	value, ok := c.lookup(key)
	if !ok {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (c *Configuration) Contains(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

func (c *Configuration) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

// Keys returns all keys in sorted order.
func (c *Configuration) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for key := range c.values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func (c *Configuration) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

func (c *Configuration) ToMap() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.values))
	for key, value := range c.values {
		out[key] = value
	}
	return out
}

func (c *Configuration) Clone() *Configuration {
	return &Configuration{values: c.ToMap()}
}

// ToProto encodes the configuration as a protobuf Struct with string values.
func (c *Configuration) ToProto() *structpb.Struct {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fields := make(map[string]*structpb.Value, len(c.values))
	for key, value := range c.values {
		fields[key] = structpb.NewStringValue(value)
	}
	return &structpb.Struct{Fields: fields}
}

// ConfigurationFromProto decodes a protobuf Struct. String, number and bool
// values are accepted; nested lists and structs are rejected.
func ConfigurationFromProto(s *structpb.Struct) (*Configuration, error) {
	cfg := NewConfiguration()
	for key, value := range s.GetFields() {
		switch kind := value.GetKind().(type) {
		case *structpb.Value_StringValue:
			cfg.values[key] = kind.StringValue
		case *structpb.Value_BoolValue:
			cfg.values[key] = strconv.FormatBool(kind.BoolValue)
		case *structpb.Value_NumberValue:
			cfg.values[key] = strconv.FormatFloat(kind.NumberValue, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("unsupported value type for key %q", key)
		}
	}
	return cfg, nil
}
