package main

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	tests := []struct {
		name string
		info debug.BuildInfo
		want string
	}{
		{
			name: "installed",
			info: debug.BuildInfo{Main: debug.Module{Version: "v0.3.1"}},
			want: "v0.3.1",
		},
		{
			name: "devel with revision",
			info: debug.BuildInfo{
				Main:     debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abcdef0123456789"}},
			},
			want: "devel-0.1.0+abcdef0",
		},
		{
			name: "devel without revision",
			info: debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: "devel-0.1.0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, version("0.1.0", &tt.info))
		})
	}
	assert.NotEmpty(t, Version())
}
