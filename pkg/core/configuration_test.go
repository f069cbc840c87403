package core

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestConfiguration_TypedAccessors(t *testing.T) {
	cfg := NewConfiguration()
	cfg.SetString("name", "wordcount")
	cfg.SetInt("parallelism", 4)
	cfg.SetInt64("memory", 1<<30)
	cfg.SetBool("object-reuse", true)
	cfg.SetDuration("timeout", 5*time.Second)

	require.Equal(t, "wordcount", cfg.GetString("name", ""))
	require.Equal(t, 4, cfg.GetInt("parallelism", 0))
	require.Equal(t, int64(1<<30), cfg.GetInt64("memory", 0))
	require.True(t, cfg.GetBool("object-reuse", false))
	require.Equal(t, 5*time.Second, cfg.GetDuration("timeout", 0))
	require.Equal(t, []string{"memory", "name", "object-reuse", "parallelism", "timeout"}, cfg.Keys())
	require.Equal(t, 5, cfg.Len())
}

func TestConfiguration_ZeroValueIsUsable(t *testing.T) {
	var cfg Configuration
	require.Equal(t, "fallback", cfg.GetString("key", "fallback"))

	cfg.SetInt("key", 7)
	require.Equal(t, 7, cfg.GetInt("key", 0))
	require.Equal(t, map[string]string{"key": "7"}, cfg.ToMap())
}

func TestConfiguration_DefaultsOnMissingOrMalformed(t *testing.T) {
	cfg := NewConfiguration()
	cfg.SetString("bad", "not-a-number")

	require.Equal(t, "fallback", cfg.GetString("missing", "fallback"))
	require.Equal(t, 7, cfg.GetInt("bad", 7))
	require.Equal(t, int64(7), cfg.GetInt64("bad", 7))
	require.True(t, cfg.GetBool("bad", true))
	require.Equal(t, time.Minute, cfg.GetDuration("bad", time.Minute))
	require.False(t, cfg.Contains("missing"))

	cfg.Remove("bad")
	require.False(t, cfg.Contains("bad"))
}

func TestConfiguration_CloneIsIndependent(t *testing.T) {
	cfg := NewConfiguration()
	cfg.SetString("a", "1")

	clone := cfg.Clone()
	clone.SetString("a", "2")
	clone.SetString("b", "3")

	require.Equal(t, "1", cfg.GetString("a", ""))
	require.False(t, cfg.Contains("b"))
}

func TestConfiguration_ProtoRoundTrip(t *testing.T) {
	cfg := NewConfiguration()
	cfg.SetString("name", "grep")
	cfg.SetInt("reducers", 3)

	decoded, err := ConfigurationFromProto(cfg.ToProto())
	require.NoError(t, err)

	if diff := cmp.Diff(cfg.ToMap(), decoded.ToMap()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigurationFromProto_ScalarKinds(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"enabled": true,
		"count":   12,
		"ratio":   0.5,
		"label":   "x",
	})
	require.NoError(t, err)

	cfg, err := ConfigurationFromProto(s)
	require.NoError(t, err)
	require.True(t, cfg.GetBool("enabled", false))
	require.Equal(t, 12, cfg.GetInt("count", 0))
	require.Equal(t, "0.5", cfg.GetString("ratio", ""))
	require.Equal(t, "x", cfg.GetString("label", ""))
}

func TestConfigurationFromProto_RejectsNested(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"nested": map[string]any{"a": 1},
	})
	require.NoError(t, err)

	_, err = ConfigurationFromProto(s)
	require.Error(t, err)
}
