package config

import "github.com/ivanlilla/webserv/internal/cfgerr"

// Methods is a bitmask over the HTTP methods a location allows.
type Methods uint8

// The three method names recognized by the allow_methods/methods
// directive.
const (
	MethodGet Methods = 1 << iota
	MethodPost
	MethodDelete
)

// DefaultMethods is applied to a location whose "allow_methods"
// directive is unset: GET and POST, matching a bare "location { … }"
// block with no method restriction declared.
const DefaultMethods = MethodGet | MethodPost

// Has reports whether m includes method.
func (m Methods) Has(method Methods) bool {
	return m&method != 0
}

// CGIBinPath is the one location path CGI directives are meaningful
// under.
const CGIBinPath = "/cgi-bin"

// Location is one route entry under a Server.
type Location struct {
	Path              string            `yaml:"path"`
	Root              string            `yaml:"root,omitempty"`
	Index             string            `yaml:"index,omitempty"`
	Autoindex         bool              `yaml:"autoindex"`
	ClientMaxBodySize int64             `yaml:"client_max_body_size"`
	Methods           Methods           `yaml:"methods"`
	Return            string            `yaml:"return,omitempty"`
	Alias             string            `yaml:"alias,omitempty"`
	CGIExecPath       []string          `yaml:"cgi_exec_path,omitempty"`
	CGIExt            []string          `yaml:"cgi_ext,omitempty"`
	CGIMap            map[string]string `yaml:"cgi_map,omitempty"`

	rootSet        bool
	indexSet       bool
	autoindexSet   bool
	methodsSet     bool
	maxBodySizeSet bool
	aliasSet       bool
	returnSet      bool
	cgiExtSet      bool
	cgiExecSet     bool
}

// NewLocation returns an empty Location for the given path. Fields left
// unset are filled in from the enclosing server during validation.
func NewLocation(path string) *Location {
	return &Location{Path: path, Methods: DefaultMethods}
}

// IsCGI reports whether this location is the one /cgi-bin route.
func (l *Location) IsCGI() bool {
	return l.Path == CGIBinPath
}

// ResolveRoot returns the filesystem root this location serves out of:
// alias substitutes the whole matched prefix and takes precedence over
// root when both are set.
func (l *Location) ResolveRoot() string {
	if l.Alias != "" {
		return l.Alias
	}
	return l.Root
}

// SetRoot applies the location-level "root" directive, rejecting a
// duplicate.
func (l *Location) SetRoot(dir string) error {
	if l.rootSet {
		return cfgerr.NewSemanticError("root is duplicated").WithDirective("root")
	}
	l.Root = dir
	l.rootSet = true
	return nil
}

// SetIndex applies the location-level "index" directive, rejecting a
// duplicate.
func (l *Location) SetIndex(name string) error {
	if l.indexSet {
		return cfgerr.NewSemanticError("index is duplicated").WithDirective("index")
	}
	l.Index = name
	l.indexSet = true
	return nil
}

// SetAutoindex applies the location-level "autoindex" directive,
// rejecting a duplicate. Disallowed entirely under /cgi-bin by the
// caller (directive.go).
func (l *Location) SetAutoindex(on bool) error {
	if l.autoindexSet {
		return cfgerr.NewSemanticError("autoindex is duplicated").WithDirective("autoindex")
	}
	l.Autoindex = on
	l.autoindexSet = true
	return nil
}

// SetMethods applies the "allow_methods"/"methods" directive, rejecting
// a duplicate.
func (l *Location) SetMethods(m Methods) error {
	if l.methodsSet {
		return cfgerr.NewSemanticError("allow_methods is duplicated").WithDirective("allow_methods")
	}
	l.Methods = m
	l.methodsSet = true
	return nil
}

// SetClientMaxBodySize applies the location-level
// "client_max_body_size" directive, rejecting a duplicate.
func (l *Location) SetClientMaxBodySize(n int64) error {
	if l.maxBodySizeSet {
		return cfgerr.NewSemanticError("client_max_body_size is duplicated").WithDirective("client_max_body_size")
	}
	l.ClientMaxBodySize = n
	l.maxBodySizeSet = true
	return nil
}

// SetAlias applies the "alias" directive, rejecting a duplicate.
// Disallowed entirely under /cgi-bin by the caller.
func (l *Location) SetAlias(path string) error {
	if l.aliasSet {
		return cfgerr.NewSemanticError("alias is duplicated").WithDirective("alias")
	}
	l.Alias = path
	l.aliasSet = true
	return nil
}

// SetReturn applies the "return" directive, rejecting a duplicate.
// Disallowed entirely under /cgi-bin by the caller.
func (l *Location) SetReturn(target string) error {
	if l.returnSet {
		return cfgerr.NewSemanticError("return is duplicated").WithDirective("return")
	}
	l.Return = target
	l.returnSet = true
	return nil
}

// SetCGIExt applies the "cgi_ext" directive, rejecting a duplicate.
// Only meaningful under /cgi-bin; the caller enforces that.
func (l *Location) SetCGIExt(exts []string) error {
	if l.cgiExtSet {
		return cfgerr.NewSemanticError("cgi_ext is duplicated").WithDirective("cgi_ext")
	}
	l.CGIExt = exts
	l.cgiExtSet = true
	return nil
}

// SetCGIExecPath applies the "cgi_exec_path" directive, rejecting a
// duplicate. Only meaningful under /cgi-bin; the caller enforces that.
func (l *Location) SetCGIExecPath(paths []string) error {
	if l.cgiExecSet {
		return cfgerr.NewSemanticError("cgi_exec_path is duplicated").WithDirective("cgi_exec_path")
	}
	l.CGIExecPath = paths
	l.cgiExecSet = true
	return nil
}

// applyDefaults propagates server defaults into fields this location
// never set.
func (l *Location) applyDefaults(srv *Server) {
	if !l.rootSet {
		l.Root = srv.Root
	}
	if !l.indexSet {
		l.Index = srv.Index
	}
	if !l.autoindexSet {
		l.Autoindex = srv.Autoindex
	}
	if !l.maxBodySizeSet {
		l.ClientMaxBodySize = srv.ClientMaxBodySize
	}
}
