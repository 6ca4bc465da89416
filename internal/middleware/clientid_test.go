package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		remoteAddr string
		want       string
	}{
		{"forwarded single hop", "1.2.3.4", "10.0.0.1:1234", "1.2.3.4"},
		{"forwarded chain uses first hop", "1.2.3.4, 10.0.0.1, 10.0.0.2", "10.0.0.1:1234", "1.2.3.4"},
		{"no forwarding falls back to peer", "", "192.168.1.50:40000", "192.168.1.50"},
		{"peer without port", "", "192.168.1.50", "192.168.1.50"},
		{"nothing known", "", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/orders", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}

			assert.Equal(t, tt.want, ClientIdentifier(r))
		})
	}
}
