package config_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ivanlilla/webserv/internal/config"
	"gotest.tools/v3/assert"
)

func TestExportYAMLContainsServerName(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "hi")

	raw := fmt.Sprintf("server { listen 127.0.0.1:8080; server_name example.test; root %s; }", root)
	servers, err := config.ParseString(raw)
	assert.NilError(t, err)

	out, err := config.ExportYAML(servers)
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(out, "server_name: example.test"))
	assert.Assert(t, strings.Contains(out, "port: 8080"))
}
