package config_test

import (
	"fmt"
	"testing"

	"github.com/ivanlilla/webserv/internal/config"
	"gotest.tools/v3/assert"
)

func TestListenOperandForms(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "hi")

	cases := []struct {
		operand string
		host    string
		port    int
	}{
		{"127.0.0.1:8080", "127.0.0.1", 8080},
		{"127.0.0.1", "127.0.0.1", 80},
		{"8080", "127.0.0.1", 8080},
		{"localhost:8080", "127.0.0.1", 8080},
		{"localhost", "127.0.0.1", 80},
	}

	for _, c := range cases {
		raw := fmt.Sprintf("server { listen %s; root %s; }", c.operand, root)
		servers, err := config.ParseString(raw)
		assert.NilError(t, err, c.operand)
		assert.Equal(t, servers[0].Listeners[0].Host, c.host, c.operand)
		assert.Equal(t, servers[0].Listeners[0].Port, c.port, c.operand)
	}
}

func TestListenPortOutOfRangeRejected(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "hi")

	cases := []string{
		"127.0.0.1:1023",
		"127.0.0.1:65536",
		"1023",
		"65536",
	}

	for _, operand := range cases {
		raw := fmt.Sprintf("server { listen %s; root %s; }", operand, root)
		_, err := config.ParseString(raw)
		assert.ErrorContains(t, err, "must be in [1024, 65535]", operand)
	}
}

func TestListenPortBoundaryAccepted(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "hi")

	cases := []string{"127.0.0.1:1024", "127.0.0.1:65535", "1024", "65535"}

	for _, operand := range cases {
		raw := fmt.Sprintf("server { listen %s; root %s; }", operand, root)
		_, err := config.ParseString(raw)
		assert.NilError(t, err, operand)
	}
}

func TestListenNonPrivateHostRejected(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "hi")

	raw := fmt.Sprintf("server { listen 8.8.8.8:8080; root %s; }", root)
	_, err := config.ParseString(raw)
	assert.ErrorContains(t, err, "loopback or private")
}

func TestUnsupportedDirectiveRejected(t *testing.T) {
	t.Parallel()

	_, err := config.ParseString("server { bogus_directive 1; }")
	assert.ErrorContains(t, err, "Unsupported directive")
}

func TestMissingValueForDirective(t *testing.T) {
	t.Parallel()

	_, err := config.ParseString("server { root }")
	assert.ErrorContains(t, err, "Missing value for root")
}

func TestDirectiveAfterLocationRejected(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "hi")

	raw := fmt.Sprintf(`
		server {
			root %s;
			location /a { root %s; }
			index index.html;
		}
	`, root, root)

	_, err := config.ParseString(raw)
	assert.ErrorContains(t, err, "parameters after location")
}

func TestErrorPageRequiresPairs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, err := config.ParseString(fmt.Sprintf("server { root %s; error_page 404 500 /err.html; }", root))
	assert.ErrorContains(t, err, "in pairs")
}

func TestErrorPageBelowFourHundredRejected(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, err := config.ParseString(fmt.Sprintf("server { root %s; error_page 200 /ok.html; }", root))
	assert.ErrorContains(t, err, ">= 400")
}

func TestAutoindexRejectedInCGILocation(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "hi")

	raw := fmt.Sprintf(`
		server {
			root %s;
			location /cgi-bin {
				root %s;
				autoindex on;
				cgi_ext .py;
				cgi_exec_path /usr/bin/python;
			}
		}
	`, root, root)

	_, err := config.ParseString(raw)
	assert.ErrorContains(t, err, "autoindex is not allowed")
}

func TestCGIExtOutsideCGIBinRejected(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "hi")

	raw := fmt.Sprintf(`
		server {
			root %s;
			location /a {
				root %s;
				cgi_ext .py;
			}
		}
	`, root, root)

	_, err := config.ParseString(raw)
	assert.ErrorContains(t, err, "only allowed in the /cgi-bin")
}

func TestCGIExtMustBeAllowed(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "hi")

	raw := fmt.Sprintf(`
		server {
			root %s;
			location /cgi-bin {
				root %s;
				cgi_ext .rb;
				cgi_exec_path /usr/bin/ruby;
			}
		}
	`, root, root)

	_, err := config.ParseString(raw)
	assert.ErrorContains(t, err, "not one of .py, .sh")
}

func TestAllowMethodsBitmask(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "hi")

	raw := fmt.Sprintf(`
		server {
			root %s;
			location /a {
				root %s;
				allow_methods GET POST;
			}
		}
	`, root, root)

	servers, err := config.ParseString(raw)
	assert.NilError(t, err)
	loc := servers[0].Locations[0]
	assert.Assert(t, loc.Methods.Has(config.MethodGet))
	assert.Assert(t, loc.Methods.Has(config.MethodPost))
	assert.Assert(t, !loc.Methods.Has(config.MethodDelete))
}

func TestLocationPathSyntaxRejectsDoubleSlash(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "hi")

	raw := fmt.Sprintf(`
		server {
			root %s;
			location //a { root %s; }
		}
	`, root, root)

	_, err := config.ParseString(raw)
	assert.ErrorContains(t, err, "'//'")
}
