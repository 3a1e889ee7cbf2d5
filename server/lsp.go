package server

import (
	"fmt"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/brim/reader"
	"github.com/chazu/brim/vm"
)

// DefaultName is the server name reported to clients when none is
// configured.
const DefaultName = "brim-lsp"

const maxCompletions = 100

// LspServer bridges LSP editor features to a brim runtime via Worker.
type LspServer struct {
	worker *Worker
	name   string
	log    commonlog.Logger

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server reading documents into rt.
func NewLSP(rt *vm.Runtime, name string) *LspServer {
	if name == "" {
		name = DefaultName
	}
	s := &LspServer{
		worker:  NewWorker(rt),
		name:    name,
		log:     commonlog.GetLogger("brim.lsp"),
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
		TextDocumentReferences: s.textDocumentReferences,
	}

	s.server = glspserver.NewServer(&s.handler, name, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// Worker returns the worker that owns the server's runtime.
func (s *LspServer) Worker() *Worker {
	return s.worker
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.log.Info("initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true
	capabilities.ReferencesProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    s.name,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	s.worker.Stop()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			s.mu.Unlock()

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

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
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

	result, err := s.worker.Do(func(rt *vm.Runtime) any {
		return SymbolsWithPrefix(rt, prefix, maxCompletions)
	})
	if err != nil {
		return nil, err
	}

	kind := protocol.CompletionItemKindVariable
	detail := "symbol"
	var items []protocol.CompletionItem
	for _, name := range result.([]string) {
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &name,
		})
	}
	return items, nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	offset := reader.Offset(text, int(params.Position.Line), int(params.Position.Character))

	result, err := s.worker.Do(func(rt *vm.Runtime) any {
		return Analyze(rt, text)
	})
	if err != nil {
		s.log.Errorf("hover %s: %v", params.TextDocument.URI, err)
		return nil, err
	}

	form, ok := result.(Analysis).FormAt(offset)
	if !ok {
		return nil, nil
	}
	return hoverFor(text, form), nil
}

func (s *LspServer) textDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	uri := params.TextDocument.URI
	text, ok := s.document(uri)
	if !ok {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}

	var locations []protocol.Location
	for _, span := range Occurrences(text, word) {
		locations = append(locations, protocol.Location{
			URI:   uri,
			Range: rangeOf(text, span[0], span[1]),
		})
	}
	return locations, nil
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	result, err := s.worker.Do(func(rt *vm.Runtime) any {
		return Analyze(rt, text)
	})
	if err != nil {
		s.log.Errorf("analyzing %s: %v", uri, err)
		return
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: result.(Analysis).Diagnostics(text, s.name),
	})
}

func hoverFor(text string, form Form) *protocol.Hover {
	r := rangeOf(text, form.Start, form.End)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: fmt.Sprintf("```scheme\n%s\n```", form.Text),
		},
		Range: &r,
	}
}

// --- Text helpers ---

func rangeOf(text string, start, end int) protocol.Range {
	sl, sc := reader.LineColumn(text, start)
	el, ec := reader.LineColumn(text, end)
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(sl), Character: protocol.UInteger(sc)},
		End:   protocol.Position{Line: protocol.UInteger(el), Character: protocol.UInteger(ec)},
	}
}

// extractPrefix returns the identifier fragment before the cursor for
// completion.
func extractPrefix(text string, pos protocol.Position) string {
	col := reader.Offset(text, int(pos.Line), int(pos.Character))
	start := col
	for start > 0 && !reader.IsDelimiter(text[start-1]) {
		start--
	}
	return text[start:col]
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	col := reader.Offset(text, int(pos.Line), int(pos.Character))
	start := col
	for start > 0 && !reader.IsDelimiter(text[start-1]) {
		start--
	}
	end := col
	for end < len(text) && !reader.IsDelimiter(text[end]) {
		end++
	}
	return text[start:end]
}

func boolPtr(b bool) *bool {
	return &b
}
