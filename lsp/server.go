// Package lsp exposes stub generation to editors as workspace commands of a
// language server speaking over stdio.
package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/implgen/generator"
)

const lsName = "implgen"

const (
	// CommandImplementFromDirectory takes a class directory and a binary
	// class name.
	CommandImplementFromDirectory = "implgen.implementFromDirectory"
	// CommandImplementFromStandardLibrary takes a binary class name.
	CommandImplementFromStandardLibrary = "implgen.implementFromStandardLibrary"
)

var log = commonlog.GetLogger("implgen.lsp")

type Server struct {
	version string
	output  string
	opts    []generator.Option

	// mu guards rootDir and gen, which initialize sets and commands read.
	mu      sync.Mutex
	rootDir string
	gen     *generator.Generator

	handler protocol.Handler
	server  *server.Server
}

// NewServer prepares a server whose generator writes below output. A
// relative output is resolved against the workspace root on initialize.
func NewServer(version, output string, opts ...generator.Option) *Server {
	s := &Server{
		version: version,
		output:  output,
		opts:    opts,
		rootDir: ".",
	}

	s.handler = protocol.Handler{
		Initialize:              s.initialize,
		Initialized:             s.initialized,
		Shutdown:                s.shutdown,
		SetTrace:                s.setTrace,
		WorkspaceExecuteCommand: s.executeCommand,
	}

	s.server = server.NewServer(&s.handler, lsName, false)
	return s
}

func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.mu.Lock()
	if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			s.rootDir = path
		}
	} else if params.RootPath != nil && *params.RootPath != "" {
		s.rootDir = *params.RootPath
	}
	s.gen = generator.New(resolveIn(s.rootDir, s.output), s.opts...)
	log.Infof("workspace %s, writing to %s", s.rootDir, s.gen.OutputDir())
	s.mu.Unlock()

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{
			CommandImplementFromDirectory,
			CommandImplementFromStandardLibrary,
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// executeCommand runs a generator operation and returns the fully qualified
// name of the written stub. The outcome is also shown to the user.
func (s *Server) executeCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	s.mu.Lock()
	gen, root := s.gen, s.rootDir
	s.mu.Unlock()
	if gen == nil {
		return nil, errors.New("server not initialized")
	}

	var (
		fqn string
		err error
	)
	switch params.Command {
	case CommandImplementFromDirectory:
		var args []string
		if args, err = stringArgs(params.Arguments, 2); err == nil {
			fqn, err = gen.ImplementFromDirectory(resolveIn(root, args[0]), args[1])
		}
	case CommandImplementFromStandardLibrary:
		var args []string
		if args, err = stringArgs(params.Arguments, 1); err == nil {
			fqn, err = gen.ImplementFromStandardLibrary(args[0])
		}
	default:
		return nil, errors.Newf("unknown command %q", params.Command)
	}

	if err != nil {
		s.show(ctx, protocol.MessageTypeError, fmt.Sprintf("implgen: %s", err))
		return nil, err
	}
	s.show(ctx, protocol.MessageTypeInfo, fmt.Sprintf("implgen: generated %s", fqn))
	return fqn, nil
}

func (s *Server) show(ctx *glsp.Context, kind protocol.MessageType, message string) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	ctx.Notify(protocol.ServerWindowShowMessage, protocol.ShowMessageParams{
		Type:    kind,
		Message: message,
	})
}

// resolve makes path absolute against the workspace root. File URIs are
// accepted as well.
func (s *Server) resolve(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return resolveIn(s.rootDir, path)
}

func resolveIn(root, path string) string {
	if p, err := uriToPath(path); err == nil {
		path = p
	}
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func stringArgs(args []any, n int) ([]string, error) {
	if len(args) != n {
		return nil, errors.Newf("expected %d arguments, got %d", n, len(args))
	}
	result := make([]string, n)
	for i, a := range args {
		str, ok := a.(string)
		if !ok {
			return nil, errors.Newf("argument %d: expected a string, got %T", i+1, a)
		}
		result[i] = str
	}
	return result, nil
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}
