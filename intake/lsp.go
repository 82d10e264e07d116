package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/remedy/framework"
)

// LSPConfig defines how to spin up a language server for diagnostics
// collection.
type LSPConfig struct {
	Command    string
	Args       []string
	RootDir    string
	LanguageID string
	// DiagnosticsWait caps how long CollectIssues waits for the server to
	// publish diagnostics for a file.
	DiagnosticsWait time.Duration
}

// LSPIntake owns a language server process and converts its published
// diagnostics into issues.
type LSPIntake struct {
	cfg         LSPConfig
	cmd         *exec.Cmd
	conn        *jsonrpc2.Conn
	cancel      context.CancelFunc
	mu          sync.Mutex
	openedFiles map[protocol.DocumentURI]bool
	diagnostics map[protocol.DocumentURI][]protocol.Diagnostic
}

// NewLSPIntake launches the configured language server and performs the
// LSP handshake.
func NewLSPIntake(cfg LSPConfig) (*LSPIntake, error) {
	if cfg.Command == "" {
		return nil, errors.New("command is required for LSP intake")
	}
	if cfg.LanguageID == "" {
		return nil, errors.New("language id is required for LSP intake")
	}
	if cfg.DiagnosticsWait <= 0 {
		cfg.DiagnosticsWait = 3 * time.Second
	}
	root := cfg.RootDir
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = absRoot

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, err
	}

	rwc := &stdioReadWriteCloser{reader: stdout, writer: stdin}
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})

	client := &LSPIntake{
		cfg:         cfg,
		cmd:         cmd,
		cancel:      cancel,
		openedFiles: make(map[protocol.DocumentURI]bool),
		diagnostics: make(map[protocol.DocumentURI][]protocol.Diagnostic),
	}

	handler := jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
		if !req.Notif {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled"}
		}
		if req.Method != "textDocument/publishDiagnostics" {
			return nil, nil
		}
		var params protocol.PublishDiagnosticsParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		client.mu.Lock()
		client.diagnostics[params.URI] = params.Diagnostics
		client.mu.Unlock()
		return nil, nil
	})

	client.conn = jsonrpc2.NewConn(ctx, stream, handler)

	go io.Copy(io.Discard, stderr)

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, err
	}

	if err := client.initialize(ctx, absRoot); err != nil {
		cancel()
		_ = cmd.Process.Kill()
		return nil, err
	}

	return client, nil
}

func (c *LSPIntake) initialize(ctx context.Context, root string) error {
	params := &protocol.InitializeParams{
		ProcessID: int32(os.Getpid()),
		RootURI:   protocol.DocumentURI(pathToURI(root)),
		ClientInfo: &protocol.ClientInfo{
			Name:    "remedy",
			Version: "0.1",
		},
		Capabilities: protocol.ClientCapabilities{
			TextDocument: &protocol.TextDocumentClientCapabilities{
				PublishDiagnostics: &protocol.PublishDiagnosticsClientCapabilities{},
			},
		},
	}
	var result protocol.InitializeResult
	if err := c.conn.Call(ctx, "initialize", params, &result); err != nil {
		return err
	}
	return c.conn.Notify(ctx, "initialized", &protocol.InitializedParams{})
}

// Close terminates the underlying process and JSON-RPC connection.
func (c *LSPIntake) Close() error {
	if c == nil {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	if c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
		_, _ = c.cmd.Process.Wait()
	}
	return nil
}

func (c *LSPIntake) ensureOpen(ctx context.Context, file string) error {
	uri := protocol.DocumentURI(pathToURI(file))
	c.mu.Lock()
	if c.openedFiles[uri] {
		c.mu.Unlock()
		return nil
	}
	c.openedFiles[uri] = true
	c.mu.Unlock()

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	params := protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: protocol.LanguageIdentifier(c.cfg.LanguageID),
			Version:    1,
			Text:       string(data),
		},
	}
	return c.conn.Notify(ctx, "textDocument/didOpen", params)
}

// CollectIssues opens each file on the server, waits for published
// diagnostics, and converts them to issues. Files the server stays silent
// on contribute nothing; that is a clean result, not an error.
func (c *LSPIntake) CollectIssues(ctx context.Context, files ...string) ([]framework.Issue, error) {
	var issues []framework.Issue
	for _, file := range files {
		diags, err := c.fileDiagnostics(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("diagnostics for %s: %w", file, err)
		}
		for _, d := range diags {
			issues = append(issues, ConvertDiagnostic(file, d))
		}
	}
	return issues, nil
}

func (c *LSPIntake) fileDiagnostics(ctx context.Context, file string) ([]protocol.Diagnostic, error) {
	if err := c.ensureOpen(ctx, file); err != nil {
		return nil, err
	}
	uri := protocol.DocumentURI(pathToURI(file))
	deadline := time.After(c.cfg.DiagnosticsWait)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		c.mu.Lock()
		if diags, ok := c.diagnostics[uri]; ok {
			c.mu.Unlock()
			return diags, nil
		}
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			// Servers only publish for files they have something to say
			// about.
			return nil, nil
		case <-ticker.C:
		}
	}
}

// ConvertDiagnostic maps one LSP diagnostic onto an issue. Exported so the
// mapping stays testable without a live server.
func ConvertDiagnostic(file string, d protocol.Diagnostic) framework.Issue {
	issue := framework.NewIssue(classifyDiagnostic(d), severityFor(d.Severity), d.Message)
	issue.FilePath = file
	issue.LineNumber = int(d.Range.Start.Line) + 1
	issue.Stage = "intake"
	return issue
}

func severityFor(s protocol.DiagnosticSeverity) framework.Priority {
	switch s {
	case protocol.DiagnosticSeverityError:
		return framework.PriorityHigh
	case protocol.DiagnosticSeverityWarning:
		return framework.PriorityMedium
	default:
		return framework.PriorityLow
	}
}

func classifyDiagnostic(d protocol.Diagnostic) framework.IssueType {
	msg := strings.ToLower(d.Message)
	switch {
	case strings.Contains(msg, "unused") || strings.Contains(msg, "unreachable"):
		return framework.IssueDeadCode
	case strings.Contains(msg, "import"):
		return framework.IssueImportError
	case strings.Contains(msg, "type") || strings.Contains(msg, "undefined") || strings.Contains(msg, "undeclared"):
		return framework.IssueTypeError
	case d.Severity == protocol.DiagnosticSeverityError:
		return framework.IssueTypeError
	default:
		return framework.IssueStyle
	}
}

type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.reader.Read(p) }
func (s *stdioReadWriteCloser) Write(p []byte) (int, error) { return s.writer.Write(p) }
func (s *stdioReadWriteCloser) Close() error {
	_ = s.reader.Close()
	return s.writer.Close()
}

func pathToURI(path string) string {
	path = filepath.Clean(path)
	if runtime.GOOS == "windows" {
		path = strings.ReplaceAll(path, "\\", "/")
		return "file:///" + strings.ReplaceAll(path, ":", "%3A")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "file://" + path
}
