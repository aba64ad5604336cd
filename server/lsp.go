// Package server implements a Language Server Protocol front end for glox.
// It publishes scanner and compiler diagnostics and answers hover and
// completion requests from the token stream.
package server

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/glox/compiler"
	"github.com/chazu/glox/vm"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "glox-lsp"

var log = commonlog.GetLogger("glox.server")

// LspServer serves glox documents over LSP.
type LspServer struct {
	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server.
func NewLSP() *LspServer {
	s := &LspServer{
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("glox LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.setDocument(uri, text)
	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.setDocument(uri, whole.Text)
			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *LspServer) setDocument(uri protocol.DocumentUri, text string) {
	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()
}

func (s *LspServer) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return complete(prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	return hover(text, params.Position), nil
}

// complete offers the reserved words starting with prefix.
func complete(prefix string) []protocol.CompletionItem {
	words := compiler.Keywords()
	sort.Strings(words)

	var items []protocol.CompletionItem
	for _, word := range words {
		if !strings.HasPrefix(word, prefix) || word == prefix {
			continue
		}
		kind := protocol.CompletionItemKindKeyword
		detail := "keyword"
		if t := compiler.LookupKeyword(word); t == compiler.TokenTrue || t == compiler.TokenFalse || t == compiler.TokenNil {
			kind = protocol.CompletionItemKindConstant
			detail = "literal"
		}
		wordCopy := word
		items = append(items, protocol.CompletionItem{
			Label:      word,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &wordCopy,
		})
	}
	return items
}

// hover describes the token under pos. When the whole document is a
// valid expression its value is shown as well.
func hover(text string, pos protocol.Position) *protocol.Hover {
	tok, ok := compiler.TokenAt(text, int(pos.Line)+1, int(pos.Character)+1)
	if !ok {
		return nil
	}

	var b strings.Builder
	switch {
	case tok.Type.IsKeyword():
		fmt.Fprintf(&b, "**keyword** `%s`", tok.Lexeme)
	case tok.IsError():
		fmt.Fprintf(&b, "**error** %s", tok.Lexeme)
	default:
		fmt.Fprintf(&b, "`%s`", tok)
	}

	if chunk, err := compiler.Compile(text); err == nil {
		if v, err := vm.Evaluate(chunk, vm.WithOutput(io.Discard)); err == nil {
			fmt.Fprintf(&b, "\n\n---\n\nExpression evaluates to `%s`", v)
		}
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
		Range: rangeOf(lineStarts(text), tok.Start, tok.End()),
	}
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := Diagnose(text)
	log.Debugf("%s: %d diagnostics", uri, len(diagnostics))

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// Diagnose compiles text and reports its problems: every compile error,
// or, for a document that compiles, the runtime error it would raise.
func Diagnose(text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	starts := lineStarts(text)
	source := lspName

	chunk, err := compiler.Compile(text)
	if err != nil {
		severity := protocol.DiagnosticSeverityError
		for _, e := range compiler.Errors(err) {
			end := e.Start + e.Length
			if e.Length == 0 {
				end = e.Start + 1
			}
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    *rangeOf(starts, e.Start, end),
				Severity: &severity,
				Source:   &source,
				Message:  fmt.Sprintf("%s%s", strings.TrimPrefix(e.Where, " "), messageSuffix(e)),
			})
		}
		return diagnostics
	}

	if _, err := vm.Evaluate(chunk, vm.WithOutput(io.Discard)); err != nil {
		var verr *vm.Error
		if !errors.As(err, &verr) {
			return diagnostics
		}
		severity := protocol.DiagnosticSeverityWarning
		line := verr.Line - 1
		if line < 0 {
			line = 0
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: protocol.UInteger(line), Character: 0},
				End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(lineLength(text, starts, line))},
			},
			Severity: &severity,
			Source:   &source,
			Message:  fmt.Sprintf("%s: %s", verr.Kind, verr.Message),
		})
	}
	return diagnostics
}

func messageSuffix(e *compiler.Error) string {
	if e.Where == "" {
		return e.Message
	}
	return ": " + e.Message
}

// lineStarts returns the character offset at which each line starts.
func lineStarts(text string) []int {
	starts := []int{0}
	i := 0
	for _, r := range text {
		i++
		if r == '\n' {
			starts = append(starts, i)
		}
	}
	return starts
}

// positionOf converts a character offset into an LSP position.
func positionOf(starts []int, offset int) protocol.Position {
	line := sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(offset - starts[line]),
	}
}

func rangeOf(starts []int, start, end int) *protocol.Range {
	return &protocol.Range{
		Start: positionOf(starts, start),
		End:   positionOf(starts, end),
	}
}

func lineLength(text string, starts []int, line int) int {
	if line >= len(starts) {
		return 0
	}
	end := len([]rune(text))
	if line+1 < len(starts) {
		end = starts[line+1] - 1
	}
	return end - starts[line]
}

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := []rune(lines[pos.Line])
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 {
		ch := line[start-1]
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			start--
		} else {
			break
		}
	}

	return string(line[start:col])
}

func boolPtr(b bool) *bool {
	return &b
}
