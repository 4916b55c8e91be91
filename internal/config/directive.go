package config

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ivanlilla/webserv/internal/cfgerr"
	"github.com/ivanlilla/webserv/internal/netutil"
)

// errMissingOperand is a sentinel collectOperands returns when a
// directive is the last token in its block (no operand at all); callers
// turn it into a "Missing value for X" diagnostic.
var errMissingOperand = cfgerr.NewParseError("missing operand")

// collectOperands scans tokens starting at start for the operand run
// terminated by a token ending in exactly one ';'. It returns the
// operands with the trailing ';' stripped from the last one, and the
// index just past the terminator.
func collectOperands(tokens []string, start int) ([]string, int, error) {
	if start >= len(tokens) {
		return nil, start, errMissingOperand
	}
	for j := start; j < len(tokens); j++ {
		if CheckTerminator(tokens[j]) == nil {
			operands := make([]string, j-start+1)
			copy(operands, tokens[start:j+1])
			operands[len(operands)-1] = strings.TrimSuffix(operands[len(operands)-1], ";")
			return operands, j + 1, nil
		}
	}
	return nil, len(tokens), cfgerr.NewParseError("Missing ';'")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseServerBlock dispatches every directive token in a server block's
// token stream into a fresh Server. cwd is the process's working
// directory, used to resolve a bare "root" operand that isn't itself a
// directory.
func ParseServerBlock(tokens []string, cwd string) (*Server, error) {
	srv := NewServer()
	i := 0
	for i < len(tokens) {
		tok := tokens[i]

		if tok == "location" {
			next, err := parseLocationDirective(srv, tokens, i, cwd)
			if err != nil {
				return nil, err
			}
			i = next
			continue
		}

		if srv.locationSeen {
			return nil, cfgerr.NewParseError("parameters after location").WithDirective(tok)
		}

		handler, ok := serverDirectiveHandlers[tok]
		if !ok {
			return nil, cfgerr.NewParseError("Unsupported directive").WithDirective(tok)
		}

		operands, next, err := collectOperands(tokens, i+1)
		if err == errMissingOperand {
			return nil, cfgerr.NewParseError("Missing value for %s", tok).WithDirective(tok)
		}
		if err != nil {
			return nil, err
		}
		if err := handler(srv, operands, cwd); err != nil {
			return nil, err
		}
		i = next
	}
	return srv, nil
}

// parseLocationDirective handles a "location PATH { … }" block starting
// at tokens[i] == "location", returning the index just past its closing
// brace.
func parseLocationDirective(srv *Server, tokens []string, i int, cwd string) (int, error) {
	if i+1 >= len(tokens) {
		return 0, cfgerr.NewParseError("Missing value for location")
	}
	path := tokens[i+1]
	if i+2 >= len(tokens) || tokens[i+2] != "{" {
		return 0, cfgerr.NewParseError("Missing '{' after location")
	}

	depth := 0
	j := i + 2
	start := j + 1
	for ; j < len(tokens); j++ {
		switch tokens[j] {
		case "{":
			depth++
		case "}":
			depth--
		}
		if depth == 0 {
			break
		}
	}
	if depth != 0 {
		return 0, cfgerr.NewParseError("Unbalanced braces in location").WithDirective("location")
	}

	loc, err := parseLocationBlock(path, tokens[start:j], cwd)
	if err != nil {
		return 0, err
	}
	if err := srv.addLocation(loc); err != nil {
		return 0, err
	}
	srv.locationSeen = true
	return j + 1, nil
}

func parseLocationBlock(path string, tokens []string, cwd string) (*Location, error) {
	loc := NewLocation(path)
	isCGI := loc.IsCGI()

	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		handler, ok := locationDirectiveHandlers[tok]
		if !ok {
			return nil, cfgerr.NewParseError("Unsupported directive").WithDirective(tok)
		}
		operands, next, err := collectOperands(tokens, i+1)
		if err == errMissingOperand {
			return nil, cfgerr.NewParseError("Missing value for %s", tok).WithDirective(tok)
		}
		if err != nil {
			return nil, err
		}
		if err := handler(loc, operands, isCGI, cwd); err != nil {
			return nil, err
		}
		i = next
	}
	return loc, nil
}

// resolveRootOperand implements the "root" directive's resolution rule:
// if the operand isn't a directory, try cwd+operand; reject if it still
// isn't one.
func resolveRootOperand(operand, cwd string) (string, error) {
	if netutil.IsDir(operand) {
		return operand, nil
	}
	candidate := filepath.Join(cwd, operand)
	if netutil.IsDir(candidate) {
		return candidate, nil
	}
	return "", cfgerr.NewSemanticError("root %q is not a directory", operand).WithDirective("root")
}

// parseListenOperand implements the "listen" directive's operand
// grammar, rejecting a host that isn't loopback/private IPv4 and an
// explicit port outside [netutil.MinPort, netutil.MaxPort]. The bare-IP
// and bare-"localhost" forms take port 80 without a range check.
func parseListenOperand(operand string) (string, int, error) {
	if operand == "localhost" {
		return "127.0.0.1", 80, nil
	}
	if idx := strings.IndexByte(operand, ':'); idx >= 0 {
		host, portStr := operand[:idx], operand[idx+1:]
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if !netutil.IsAllowedHost(host) {
			return "", 0, cfgerr.NewSemanticError("listen host %q must be a loopback or private IPv4 address", host).WithDirective("listen")
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return "", 0, cfgerr.NewParseError("invalid port %q in listen directive", portStr).WithDirective("listen")
		}
		if port < netutil.MinPort || port > netutil.MaxPort {
			return "", 0, cfgerr.NewSemanticError("listen port %d must be in [%d, %d]", port, netutil.MinPort, netutil.MaxPort).WithDirective("listen")
		}
		return host, port, nil
	}
	if netutil.IsValidIPv4(operand) {
		if !netutil.IsAllowedHost(operand) {
			return "", 0, cfgerr.NewSemanticError("listen host %q must be a loopback or private IPv4 address", operand).WithDirective("listen")
		}
		return operand, 80, nil
	}
	if isDigits(operand) {
		port, ok := netutil.ParsePort(operand)
		if !ok {
			return "", 0, cfgerr.NewSemanticError("listen port %q must be in [%d, %d]", operand, netutil.MinPort, netutil.MaxPort).WithDirective("listen")
		}
		return "127.0.0.1", port, nil
	}
	return "", 0, cfgerr.NewParseError("invalid listen operand %q", operand).WithDirective("listen")
}

type serverHandler func(srv *Server, operands []string, cwd string) error

var serverDirectiveHandlers = map[string]serverHandler{
	"listen":               handleListen,
	"server_name":          handleServerName,
	"root":                 handleServerRoot,
	"index":                handleServerIndex,
	"autoindex":            handleServerAutoindex,
	"client_max_body_size": handleServerMaxBodySize,
	"error_page":           handleErrorPage,
}

func handleListen(srv *Server, operands []string, cwd string) error {
	if len(operands) != 1 {
		return cfgerr.NewParseError("listen requires exactly one operand").WithDirective("listen")
	}
	host, port, err := parseListenOperand(operands[0])
	if err != nil {
		return err
	}
	srv.Listeners = append(srv.Listeners, Listener{Host: host, Port: port})
	return nil
}

func handleServerName(srv *Server, operands []string, cwd string) error {
	if len(operands) != 1 {
		return cfgerr.NewParseError("server_name requires exactly one operand").WithDirective("server_name")
	}
	return srv.SetServerName(operands[0])
}

func handleServerRoot(srv *Server, operands []string, cwd string) error {
	if len(operands) != 1 {
		return cfgerr.NewParseError("root requires exactly one operand").WithDirective("root")
	}
	resolved, err := resolveRootOperand(operands[0], cwd)
	if err != nil {
		return err
	}
	return srv.SetRoot(resolved)
}

func handleServerIndex(srv *Server, operands []string, cwd string) error {
	if len(operands) != 1 {
		return cfgerr.NewParseError("index requires exactly one operand").WithDirective("index")
	}
	return srv.SetIndex(operands[0])
}

func handleServerAutoindex(srv *Server, operands []string, cwd string) error {
	on, err := parseOnOff(operands, "autoindex")
	if err != nil {
		return err
	}
	return srv.SetAutoindex(on)
}

func handleServerMaxBodySize(srv *Server, operands []string, cwd string) error {
	n, err := parseMaxBodySize(operands, "client_max_body_size")
	if err != nil {
		return err
	}
	return srv.SetClientMaxBodySize(n)
}

func handleErrorPage(srv *Server, operands []string, cwd string) error {
	if len(operands) == 0 || len(operands)%2 != 0 {
		return cfgerr.NewParseError("error_page requires CODE... PATH in pairs").WithDirective("error_page")
	}
	for i := 0; i+1 < len(operands); i += 2 {
		codeStr, path := operands[i], operands[i+1]
		if len(codeStr) != 3 || !isDigits(codeStr) {
			return cfgerr.NewParseError("error_page code %q must be three digits", codeStr).WithDirective("error_page")
		}
		code, _ := strconv.Atoi(codeStr)
		if code < 400 {
			return cfgerr.NewSemanticError("error_page code %d must be a defined status >= 400", code).WithDirective("error_page")
		}
		srv.ErrorPages[code] = path
	}
	return nil
}

func parseOnOff(operands []string, directive string) (bool, error) {
	if len(operands) != 1 {
		return false, cfgerr.NewParseError("%s requires exactly one operand", directive).WithDirective(directive)
	}
	switch operands[0] {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, cfgerr.NewParseError("%s must be 'on' or 'off'", directive).WithDirective(directive)
	}
}

func parseMaxBodySize(operands []string, directive string) (int64, error) {
	if len(operands) != 1 {
		return 0, cfgerr.NewParseError("%s requires exactly one operand", directive).WithDirective(directive)
	}
	op := operands[0]
	if !isDigits(op) {
		return 0, cfgerr.NewParseError("%s must be digits only", directive).WithDirective(directive)
	}
	n, err := strconv.ParseInt(op, 10, 64)
	if err != nil || n <= 0 {
		return 0, cfgerr.NewParseError("%s must be a positive nonzero integer", directive).WithDirective(directive)
	}
	return n, nil
}

type locationHandler func(loc *Location, operands []string, isCGI bool, cwd string) error

var locationDirectiveHandlers = map[string]locationHandler{
	"root":                 handleLocRoot,
	"allow_methods":        handleLocMethods,
	"methods":              handleLocMethods,
	"autoindex":            handleLocAutoindex,
	"index":                handleLocIndex,
	"alias":                handleLocAlias,
	"return":               handleLocReturn,
	"cgi_ext":              handleLocCGIExt,
	"cgi_exec_path":        handleLocCGIExecPath,
	"client_max_body_size": handleLocMaxBodySize,
}

func handleLocRoot(loc *Location, operands []string, isCGI bool, cwd string) error {
	if len(operands) != 1 {
		return cfgerr.NewParseError("root requires exactly one operand").WithDirective("root")
	}
	resolved, err := resolveRootOperand(operands[0], cwd)
	if err != nil {
		return err
	}
	return loc.SetRoot(resolved)
}

func handleLocIndex(loc *Location, operands []string, isCGI bool, cwd string) error {
	if len(operands) != 1 {
		return cfgerr.NewParseError("index requires exactly one operand").WithDirective("index")
	}
	return loc.SetIndex(operands[0])
}

func handleLocAutoindex(loc *Location, operands []string, isCGI bool, cwd string) error {
	if isCGI {
		return cfgerr.NewParseError("autoindex is not allowed in a %s location", CGIBinPath).WithDirective("autoindex")
	}
	on, err := parseOnOff(operands, "autoindex")
	if err != nil {
		return err
	}
	return loc.SetAutoindex(on)
}

func handleLocMaxBodySize(loc *Location, operands []string, isCGI bool, cwd string) error {
	n, err := parseMaxBodySize(operands, "client_max_body_size")
	if err != nil {
		return err
	}
	return loc.SetClientMaxBodySize(n)
}

func handleLocMethods(loc *Location, operands []string, isCGI bool, cwd string) error {
	if len(operands) == 0 {
		return cfgerr.NewParseError("allow_methods requires at least one operand").WithDirective("allow_methods")
	}
	var mask Methods
	for _, op := range operands {
		switch op {
		case "GET":
			mask |= MethodGet
		case "POST":
			mask |= MethodPost
		case "DELETE":
			mask |= MethodDelete
		default:
			return cfgerr.NewParseError("unsupported method %q", op).WithDirective("allow_methods")
		}
	}
	return loc.SetMethods(mask)
}

func handleLocAlias(loc *Location, operands []string, isCGI bool, cwd string) error {
	if isCGI {
		return cfgerr.NewParseError("alias is not allowed in a %s location", CGIBinPath).WithDirective("alias")
	}
	if len(operands) != 1 {
		return cfgerr.NewParseError("alias requires exactly one operand").WithDirective("alias")
	}
	return loc.SetAlias(operands[0])
}

func handleLocReturn(loc *Location, operands []string, isCGI bool, cwd string) error {
	if isCGI {
		return cfgerr.NewParseError("return is not allowed in a %s location", CGIBinPath).WithDirective("return")
	}
	if len(operands) != 1 {
		return cfgerr.NewParseError("return requires exactly one operand").WithDirective("return")
	}
	return loc.SetReturn(operands[0])
}

func handleLocCGIExt(loc *Location, operands []string, isCGI bool, cwd string) error {
	if !isCGI {
		return cfgerr.NewParseError("cgi_ext is only allowed in the %s location", CGIBinPath).WithDirective("cgi_ext")
	}
	if len(operands) == 0 {
		return cfgerr.NewParseError("cgi_ext requires at least one operand").WithDirective("cgi_ext")
	}
	return loc.SetCGIExt(operands)
}

func handleLocCGIExecPath(loc *Location, operands []string, isCGI bool, cwd string) error {
	if !isCGI {
		return cfgerr.NewParseError("cgi_exec_path is only allowed in the %s location", CGIBinPath).WithDirective("cgi_exec_path")
	}
	if len(operands) == 0 {
		return cfgerr.NewParseError("cgi_exec_path requires at least one operand").WithDirective("cgi_exec_path")
	}
	return loc.SetCGIExecPath(operands)
}
