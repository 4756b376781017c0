package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-c", "fplay.yaml", "-log-level", "debug"},
			allowed: []string{"-c"},
			want:    []string{"-c", "fplay.yaml"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=fplay.json", "-d", "users.db"},
			allowed: []string{"-c", "--config"},
			want:    []string{"--config=fplay.json"},
		},
		{
			name:    "unknown flags ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "dangling flag kept",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next flag is not a value",
			args:    []string{"-c", "-env", ".env"},
			allowed: []string{"-c", "-env"},
			want:    []string{"-c", "-env", ".env"},
		},
		{
			name:    "repeats preserved in order",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestSourceFlags(t *testing.T) {
	t.Run("short config and env", func(t *testing.T) {
		got := SourceFlags([]string{"-c", "/etc/fplay.yaml", "-env", "/etc/fplay.env", "-volume", "3"})
		assert.Equal(t, Sources{ConfigPath: "/etc/fplay.yaml", EnvPath: "/etc/fplay.env"}, got)
	})

	t.Run("long config, last wins", func(t *testing.T) {
		got := SourceFlags([]string{"-config", "/a.json", "--config=/b.json"})
		assert.Equal(t, "/b.json", got.ConfigPath)
		assert.Empty(t, got.EnvPath)
	})

	t.Run("nothing given", func(t *testing.T) {
		assert.Equal(t, Sources{}, SourceFlags([]string{"-d", "users.db"}))
	})
}
