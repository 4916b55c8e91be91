package config

import "github.com/ivanlilla/webserv/internal/cfgerr"

// DefaultClientMaxBodySize is the byte cap applied when no
// client_max_body_size directive is declared.
const DefaultClientMaxBodySize int64 = 50_000_000

// defaultErrorPageCodes are initialized with an empty path at server
// construction time.
var defaultErrorPageCodes = []int{301, 302, 400, 401, 403, 404, 500, 502, 503, 504}

// Listener is one (host, port) pair a server declares via "listen".
type Listener struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Server is one virtual server: a "server { … }" block, fully parsed
// and (once ValidateServer has run) semantically validated.
type Server struct {
	ServerName        string         `yaml:"server_name"`
	Root              string         `yaml:"root"`
	Index             string         `yaml:"index"`
	Autoindex         bool           `yaml:"autoindex"`
	ClientMaxBodySize int64          `yaml:"client_max_body_size"`
	ErrorPages        map[int]string `yaml:"error_pages"`
	Listeners         []Listener     `yaml:"listeners"`
	Locations         []*Location    `yaml:"locations"`

	serverNameSet  bool
	rootSet        bool
	indexSet       bool
	autoindexSet   bool
	maxBodySizeSet bool
	locationSeen   bool
}

// NewServer returns a Server with the default error-page table and no
// other directive applied yet.
func NewServer() *Server {
	pages := make(map[int]string, len(defaultErrorPageCodes))
	for _, code := range defaultErrorPageCodes {
		pages[code] = ""
	}
	return &Server{ErrorPages: pages}
}

// SetServerName applies the "server_name" directive, rejecting a
// duplicate.
func (s *Server) SetServerName(name string) error {
	if s.serverNameSet {
		return cfgerr.NewSemanticError("server_name is duplicated")
	}
	s.ServerName = name
	s.serverNameSet = true
	return nil
}

// SetRoot applies the "root" directive, rejecting a duplicate. The
// caller is responsible for resolving the operand to a directory first
// (see resolveRootOperand in directive.go).
func (s *Server) SetRoot(dir string) error {
	if s.rootSet {
		return cfgerr.NewSemanticError("Root is duplicated")
	}
	s.Root = dir
	s.rootSet = true
	return nil
}

// SetIndex applies the "index" directive, rejecting a duplicate.
func (s *Server) SetIndex(name string) error {
	if s.indexSet {
		return cfgerr.NewSemanticError("index is duplicated")
	}
	s.Index = name
	s.indexSet = true
	return nil
}

// SetAutoindex applies the "autoindex" directive, rejecting a
// duplicate.
func (s *Server) SetAutoindex(on bool) error {
	if s.autoindexSet {
		return cfgerr.NewSemanticError("autoindex is duplicated")
	}
	s.Autoindex = on
	s.autoindexSet = true
	return nil
}

// SetClientMaxBodySize applies the "client_max_body_size" directive,
// rejecting a duplicate.
func (s *Server) SetClientMaxBodySize(n int64) error {
	if s.maxBodySizeSet {
		return cfgerr.NewSemanticError("client_max_body_size is duplicated")
	}
	s.ClientMaxBodySize = n
	s.maxBodySizeSet = true
	return nil
}

// addLocation appends loc to the server's route table. Duplicate-path
// rejection happens in ValidateServer, which sees the whole list at
// once.
func (s *Server) addLocation(loc *Location) error {
	s.Locations = append(s.Locations, loc)
	return nil
}

// applyDefaults fills in root/index/client_max_body_size when no
// directive set them.
func (s *Server) applyDefaults() {
	if !s.rootSet {
		s.Root = "/"
	}
	if !s.indexSet {
		s.Index = "index.html"
	}
	if !s.maxBodySizeSet {
		s.ClientMaxBodySize = DefaultClientMaxBodySize
	}
}

// EffectiveListeners returns the server's declared listeners, or the
// default (127.0.0.1, 80) if none were declared.
func (s *Server) EffectiveListeners() []Listener {
	if len(s.Listeners) == 0 {
		return []Listener{{Host: "127.0.0.1", Port: 80}}
	}
	return s.Listeners
}
