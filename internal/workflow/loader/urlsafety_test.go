package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSourceURL_AllowsPublicHTTPS(t *testing.T) {
	err := validateSourceURL("https://example.com/workflows/login.yaml")
	assert.NoError(t, err)
}

func TestValidateSourceURL_RejectsNonHTTPScheme(t *testing.T) {
	err := validateSourceURL("ftp://example.com/workflow.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheme")
}

func TestValidateSourceURL_RejectsBlockedHostnames(t *testing.T) {
	for _, host := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		err := validateSourceURL("http://" + host + "/workflow.yaml")
		assert.Error(t, err, host)
	}
}

func TestValidateSourceURL_RejectsPrivateAndLinkLocalIPs(t *testing.T) {
	for _, host := range []string{"10.0.0.5", "192.168.1.10", "169.254.169.254"} {
		err := validateSourceURL("http://" + host + "/workflow.yaml")
		assert.Error(t, err, host)
	}
}

func TestValidateSourceURL_RejectsPathTraversal(t *testing.T) {
	err := validateSourceURL("https://example.com/../../etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked pattern")
}

func TestValidateSourceURL_RejectsEncodedTraversal(t *testing.T) {
	err := validateSourceURL("https://example.com/%2e%2e%2fetc/passwd")
	assert.Error(t, err)
}

func TestValidateIP_BlocksEachReservedCategory(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1":       true,
		"10.1.2.3":        true,
		"169.254.0.1":     true,
		"224.0.0.1":       true,
		"0.0.0.0":         true,
		"8.8.8.8":         false,
		"93.184.216.34":   false,
	}
	for host, wantErr := range cases {
		err := validateHost(host)
		if wantErr {
			assert.Error(t, err, host)
		} else {
			assert.NoError(t, err, host)
		}
	}
}
