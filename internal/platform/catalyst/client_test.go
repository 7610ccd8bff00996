package catalyst

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "eyJ0eXAiOiJKV1Qi"

// fakeController serves the two PnP endpoints over TLS with a self-signed certificate.
func fakeController(t *testing.T, devices map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /dna/system/api/v1/auth/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			http.Error(w, `{"error":"Authentication has failed"}`, http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"Token": testToken})
	})
	mux.HandleFunc("GET /dna/intent/api/v1/onboarding/pnp-device", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-auth-token") != testToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		serial := r.URL.Query().Get("serialNumber")
		if serial == "BROKEN" {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		raw, ok := devices[serial]
		if !ok {
			_, _ = w.Write([]byte("[]"))
			return
		}
		_, _ = w.Write([]byte(raw))
	})

	srv := httptest.NewTLSServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func connect(t *testing.T, srv *httptest.Server, password string) (*Client, error) {
	t.Helper()
	return Connect(context.Background(), Config{
		Host:     strings.TrimPrefix(srv.URL, "https://"),
		Username: "admin",
		Password: password,
		Insecure: true,
		Timeout:  5 * time.Second,
	})
}

func TestConnect(t *testing.T) {
	t.Parallel()
	srv := fakeController(t, nil)

	c, err := connect(t, srv, "secret")
	require.NoError(t, err)
	assert.Equal(t, testToken, c.token)
}

func TestConnect_BadCredentials(t *testing.T) {
	t.Parallel()
	srv := fakeController(t, nil)

	_, err := connect(t, srv, "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthentication))
	assert.Contains(t, err.Error(), "status 401")
}

func TestConnect_VerifiesCertificateByDefault(t *testing.T) {
	t.Parallel()
	srv := fakeController(t, nil)

	_, err := Connect(context.Background(), Config{
		Host:     strings.TrimPrefix(srv.URL, "https://"),
		Username: "admin",
		Password: "secret",
		Timeout:  5 * time.Second,
	})
	assert.True(t, errors.Is(err, ErrAuthentication))
}

func TestDeviceIP(t *testing.T) {
	t.Parallel()
	srv := fakeController(t, map[string]string{
		"FOC1": `[{"deviceInfo":{"serialNumber":"FOC1","httpHeaders":[
			{"key":"host","value":"10.10.1.1"},
			{"key":"clientAddress","value":"10.20.30.40"}]}}]`,
		"FOC2": `[{"deviceInfo":{"serialNumber":"FOC2","httpHeaders":[
			{"key":"empty","value":""},
			{"key":"x-forwarded-for","value":"10.20.30.41"}]}}]`,
		"FOC3": `[{"deviceInfo":{"serialNumber":"FOC3","httpHeaders":[]}}]`,
	})
	c, err := connect(t, srv, "secret")
	require.NoError(t, err)

	tests := []struct {
		serial string
		want   string
	}{
		{serial: "FOC1", want: "10.20.30.40"},
		{serial: "FOC2", want: "10.20.30.41"},
		{serial: "FOC3", want: ""},
		{serial: "UNKNOWN", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.serial, func(t *testing.T) {
			ip, err := c.DeviceIP(context.Background(), tt.serial)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ip)
		})
	}
}

func TestDeviceIP_LookupError(t *testing.T) {
	t.Parallel()
	srv := fakeController(t, nil)
	c, err := connect(t, srv, "secret")
	require.NoError(t, err)

	_, err = c.DeviceIP(context.Background(), "BROKEN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BROKEN")
	assert.False(t, errors.Is(err, ErrAuthentication))
}

func TestClose(t *testing.T) {
	t.Parallel()
	srv := fakeController(t, nil)
	c, err := connect(t, srv, "secret")
	require.NoError(t, err)

	require.NoError(t, c.Close())
	_, err = c.DeviceIP(context.Background(), "FOC1")
	assert.ErrorIs(t, err, ErrClosed)
}
