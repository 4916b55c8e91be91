package listener_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ivanlilla/webserv/internal/config"
	"github.com/ivanlilla/webserv/internal/listener"
	"gotest.tools/v3/assert"
)

func writeIndex(t *testing.T, dir string) {
	t.Helper()
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("hi"), 0o644))
}

func TestBindSharedEndpointMergesServers(t *testing.T) {
	root := t.TempDir()
	writeIndex(t, root)

	raw := `
		server {
			listen 127.0.0.1:18099;
			server_name a.test;
			root ` + root + `;
		}
		server {
			listen 127.0.0.1:18099;
			server_name b.test;
			root ` + root + `;
		}
	`
	servers, err := config.ParseString(raw)
	assert.NilError(t, err)

	table, err := listener.Bind(servers)
	assert.NilError(t, err)
	defer table.Close()

	fds := table.FDs()
	assert.Equal(t, len(fds), 1)
	assert.Equal(t, len(table.ServersForFD(fds[0])), 2)
}

func TestBindDistinctPortsProduceDistinctSockets(t *testing.T) {
	root := t.TempDir()
	writeIndex(t, root)

	raw := `
		server {
			listen 127.0.0.1:18100;
			root ` + root + `;
		}
		server {
			listen 127.0.0.1:18101;
			root ` + root + `;
		}
	`
	servers, err := config.ParseString(raw)
	assert.NilError(t, err)

	table, err := listener.Bind(servers)
	assert.NilError(t, err)
	defer table.Close()

	assert.Equal(t, len(table.FDs()), 2)
}
