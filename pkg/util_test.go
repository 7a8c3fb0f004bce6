package pkg

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPIsLocal(t *testing.T) {
	assert.True(t, IPIsLocal("127.0.0.1:51234"))
	assert.True(t, IPIsLocal("172.17.0.1:8080"))
	assert.False(t, IPIsLocal("85.164.23.11:443"))
	assert.False(t, IPIsLocal("8.8.8.8"))
}

func TestReadUserIP(t *testing.T) {
	req, err := http.NewRequest("GET", "/session", nil)
	require.NoError(t, err)
	req.Header.Set("X-Real-Ip", "85.164.23.11")

	ip, err := ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "85.164.23.11", ip)

	req.Header.Del("X-Real-Ip")
	req.Header.Set("X-Forwarded-For", "91.23.110.5")
	ip, err = ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "91.23.110.5", ip)

	req.Header.Del("X-Forwarded-For")
	req.RemoteAddr = "127.0.0.1:41000"
	ip, err = ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "localhost", ip)

	req.RemoteAddr = "not-an-ip"
	_, err = ReadUserIP(req)
	assert.Error(t, err)
}
