package config

import (
	"fmt"
	"strings"

	"github.com/ivanlilla/webserv/internal/cfgerr"
	"github.com/ivanlilla/webserv/internal/netutil"
)

// forbiddenPathChars are the characters disallowed in a Location.path.
const forbiddenPathChars = "*?<>|\"\\\x00"

// ValidateServer enforces every cross-directive invariant a server and
// its locations must satisfy, applying server and location defaults
// along the way. It mutates srv and its locations in place.
func ValidateServer(srv *Server) error {
	srv.applyDefaults()

	indexPath := netutil.ResolveUnder(srv.Root, srv.Index)
	if !netutil.IsReadableFile(indexPath) {
		return cfgerr.NewSemanticError("index %q is not a readable file under root %q", srv.Index, srv.Root).WithDirective("index")
	}

	seenPaths := make(map[string]bool, len(srv.Locations))
	for _, loc := range srv.Locations {
		if seenPaths[loc.Path] {
			return cfgerr.NewSemanticError("location %q is duplicated", loc.Path).WithDirective("location")
		}
		seenPaths[loc.Path] = true
	}

	for code, path := range srv.ErrorPages {
		if path == "" {
			continue
		}
		if code < 100 || code > 599 {
			return cfgerr.NewSemanticError("error_page code %d is out of range [100, 599]", code).WithDirective("error_page")
		}
		resolved := netutil.ResolveUnder(srv.Root, path)
		if !netutil.IsReadableFile(resolved) {
			return cfgerr.NewSemanticError("error_page %d path %q is not a readable file under root %q", code, path, srv.Root).WithDirective("error_page")
		}
	}

	for _, loc := range srv.Locations {
		loc.applyDefaults(srv)
		if loc.IsCGI() {
			if err := validateCGILocation(loc); err != nil {
				return err
			}
			continue
		}
		if err := validateOrdinaryLocation(loc); err != nil {
			return err
		}
	}

	return nil
}

var allowedCGIExt = map[string]bool{
	".py":  true,
	".sh":  true,
	"*.py": true,
	"*.sh": true,
}

// validateCGILocation enforces CGI coherence invariants
// and builds the extension→interpreter mapping.
func validateCGILocation(loc *Location) error {
	if len(loc.CGIExecPath) == 0 || len(loc.CGIExt) == 0 {
		return cfgerr.NewSemanticError("/cgi-bin location requires both cgi_ext and cgi_exec_path").WithDirective("cgi_ext")
	}
	if len(loc.CGIExecPath) != len(loc.CGIExt) {
		return cfgerr.NewSemanticError("/cgi-bin location's cgi_ext and cgi_exec_path must have equal length").WithDirective("cgi_ext")
	}

	mapping := make(map[string]string, len(loc.CGIExt))
	for i, ext := range loc.CGIExt {
		if !allowedCGIExt[ext] {
			return cfgerr.NewSemanticError("cgi_ext %q is not one of .py, .sh, *.py, *.sh", ext).WithDirective("cgi_ext")
		}
		execPath := loc.CGIExecPath[i]
		if !strings.Contains(execPath, "python") && !strings.Contains(execPath, "bash") {
			return cfgerr.NewSemanticError("cgi_exec_path %q must reference python or bash", execPath).WithDirective("cgi_exec_path")
		}
		mapping[strings.TrimPrefix(ext, "*")] = execPath
	}
	loc.CGIMap = mapping

	indexPath := netutil.ResolveUnder(loc.ResolveRoot(), loc.Index)
	if !netutil.IsReadableFile(indexPath) {
		return cfgerr.NewSemanticError("/cgi-bin index %q is not a readable file under %q", loc.Index, loc.ResolveRoot()).WithDirective("index")
	}
	return nil
}

// validateOrdinaryLocation validates path syntax, index readability,
// and alias/return target existence for a non-CGI location.
func validateOrdinaryLocation(loc *Location) error {
	if err := validateLocationPathSyntax(loc.Path); err != nil {
		return err
	}

	indexPath := netutil.ResolveUnder(loc.ResolveRoot(), loc.Index)
	if !netutil.IsReadableFile(indexPath) {
		return cfgerr.NewSemanticError("location %q index %q is not a readable file under %q", loc.Path, loc.Index, loc.ResolveRoot()).WithDirective("index")
	}

	if loc.Alias != "" && !netutil.IsDir(loc.Alias) {
		return cfgerr.NewSemanticError("location %q alias %q does not exist", loc.Path, loc.Alias).WithDirective("alias")
	}
	if loc.Return != "" {
		target := netutil.ResolveUnder(loc.ResolveRoot(), loc.Return)
		if !netutil.IsReadableFile(target) {
			return cfgerr.NewSemanticError("location %q return target %q does not exist under %q", loc.Path, loc.Return, loc.ResolveRoot()).WithDirective("return")
		}
	}
	return nil
}

// validateLocationPathSyntax enforces Location.path shape:
// begins with '/', no whitespace, no "//", none of * ? < > | " \ NUL.
func validateLocationPathSyntax(path string) error {
	if !strings.HasPrefix(path, "/") {
		return cfgerr.NewSemanticError("location path %q must begin with '/'", path).WithDirective("location")
	}
	if strings.ContainsAny(path, " \t\n\r") {
		return cfgerr.NewSemanticError("location path %q must not contain whitespace", path).WithDirective("location")
	}
	if strings.Contains(path, "//") {
		return cfgerr.NewSemanticError("location path %q must not contain '//'", path).WithDirective("location")
	}
	if strings.ContainsAny(path, forbiddenPathChars) {
		return cfgerr.NewSemanticError("location path %q contains a forbidden character", path).WithDirective("location")
	}
	return nil
}

// ValidateUniqueness enforces the global (host, port, server_name)
// uniqueness invariant across every parsed server.
func ValidateUniqueness(servers []*Server) error {
	seen := make(map[string]bool)
	for _, srv := range servers {
		for _, l := range srv.EffectiveListeners() {
			key := fmt.Sprintf("%s:%d:%s", l.Host, l.Port, srv.ServerName)
			if seen[key] {
				return cfgerr.NewSemanticError("listener %s:%d with server_name %q is declared more than once", l.Host, l.Port, srv.ServerName)
			}
			seen[key] = true
		}
	}
	return nil
}
