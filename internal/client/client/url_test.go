package client

import (
	"testing"

	"github.com/dmitrijs2005/skykeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeServerURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "https://bsky.social"},
		{in: "   ", want: "https://bsky.social"},
		{in: "bsky.social", want: "https://bsky.social"},
		{in: "https://pds.example.com/", want: "https://pds.example.com"},
		{in: "HTTPS://pds.example.com", want: "https://pds.example.com"},
		{in: "pds.example.com:8443", want: "https://pds.example.com:8443"},
		{in: "http://insecure.example.com", wantErr: true},
		{in: "ftp://example.com", wantErr: true},
		{in: "https://", wantErr: true},
		{in: "https://exa mple.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeServerURL(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrInvalidServerURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewXRPCClient_RejectsInsecureURL(t *testing.T) {
	_, err := NewXRPCClient("http://bsky.social")
	require.ErrorIs(t, err, common.ErrInvalidServerURL)
}
