// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package tfstate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DispatchesOnType(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		definition map[string]any
		wantType   string
	}{
		{
			name:       "local_explicit",
			definition: map[string]any{"type": "local", "dir": dir},
			wantType:   "local",
		},
		{
			name:       "local_default",
			definition: map[string]any{"dir": dir},
			wantType:   "local",
		},
		{
			name:       "consul",
			definition: map[string]any{"type": "consul", "url": "http://127.0.0.1:8500"},
			wantType:   "consul",
		},
		{
			name:       "s3",
			definition: map[string]any{"type": "s3", "bucket": "states"},
			wantType:   "s3",
		},
		{
			name:       "remote",
			definition: map[string]any{"type": "remote", "organization": "acme"},
			wantType:   "remote",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be, err := New(context.Background(), tt.name, tt.definition)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, be.Type())
		})
	}
}

func TestNew_UnsupportedType(t *testing.T) {
	_, err := New(context.Background(), "bogus", map[string]any{"type": "etcd"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}
