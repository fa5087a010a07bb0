// Package parser turns C and C++ files into ast.Entity trees using tree-sitter.
//
// A Session owns every syntax tree it produces. Entities returned by a
// TranslationUnit point into those trees and stay valid until Session.Close.
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cinject/cli/internal/ast"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	sitter "github.com/smacker/go-tree-sitter"
)

// DefaultCacheSize bounds the number of file contents kept in memory
const DefaultCacheSize = 512

// ErrSyntax marks a tree that contains syntax errors
var ErrSyntax = errors.New("source contains syntax errors")

// ErrSessionClosed is returned by Parse after Close
var ErrSessionClosed = errors.New("parser session is closed")

// ParseError is returned when a translation unit cannot be parsed
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// Options configures a Session
type Options struct {
	// IncludePaths are searched for #include directives, in order
	IncludePaths []string
	// Strict rejects translation units whose tree has syntax errors
	Strict bool
	// CacheSize bounds the file content cache; 0 uses DefaultCacheSize
	CacheSize int
	Logger    logrus.FieldLogger
}

// Session is the parsing context shared by every translation unit of a run.
// Parse is safe for concurrent use; each translation unit gets its own trees.
type Session struct {
	includePaths []string
	strict       bool
	log          logrus.FieldLogger
	sources      *lru.Cache[string, []byte]

	mu     sync.Mutex
	trees  []*sitter.Tree
	closed bool
}

// NewSession creates a parsing session
func NewSession(opts Options) (*Session, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create source cache: %w", err)
	}

	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	includes := make([]string, 0, len(opts.IncludePaths))
	for _, p := range opts.IncludePaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve include path %s: %w", p, err)
		}
		includes = append(includes, abs)
	}

	return &Session{
		includePaths: includes,
		strict:       opts.Strict,
		log:          log,
		sources:      cache,
	}, nil
}

// Parse parses path and every header it includes that can be resolved
func (s *Session) Parse(ctx context.Context, path string) (*TranslationUnit, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if s.isClosed() {
		return nil, &ParseError{Path: abs, Err: ErrSessionClosed}
	}

	content, err := s.readSource(abs)
	if err != nil {
		return nil, &ParseError{Path: abs, Err: err}
	}

	lang := detectLanguage(abs, content)
	main, err := s.parseFile(ctx, abs, content, lang)
	if err != nil {
		return nil, &ParseError{Path: abs, Err: err}
	}
	if main.tree.RootNode().HasError() {
		if s.strict {
			s.release(main.tree)
			return nil, &ParseError{Path: abs, Err: ErrSyntax}
		}
		s.log.WithField("file", abs).Warn("syntax errors in translation unit, continuing with partial tree")
	}

	tu := &TranslationUnit{
		session:  s,
		language: lang,
		main:     main,
		files:    map[string]*sourceFile{abs: main},
		included: map[string]bool{abs: true},
		resolved: map[includeKey]string{},
	}
	if err := tu.loadIncludes(ctx, main); err != nil {
		return nil, &ParseError{Path: abs, Err: err}
	}
	tu.root = &entity{
		tu:         tu,
		file:       main,
		node:       main.tree.RootNode(),
		kind:       ast.KindOther,
		definition: true,
		name:       filepath.Base(abs),
		members:    itemsTopLevel,
	}
	return tu, nil
}

// Close frees every tree produced by the session. Entities obtained from it
// must not be used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.trees {
		t.Close()
	}
	s.trees = nil
	s.closed = true
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) parseFile(ctx context.Context, path string, content []byte, lang Language) (*sourceFile, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(lang.grammar())

	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, errors.New("parser returned no tree")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		tree.Close()
		return nil, ErrSessionClosed
	}
	s.trees = append(s.trees, tree)
	s.mu.Unlock()

	return &sourceFile{path: path, content: content, tree: tree}, nil
}

// release closes a tree that will never be handed out
func (s *Session) release(tree *sitter.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.trees {
		if t == tree {
			s.trees = append(s.trees[:i], s.trees[i+1:]...)
			break
		}
	}
	tree.Close()
}

func (s *Session) readSource(path string) ([]byte, error) {
	if b, ok := s.sources.Get(path); ok {
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s.sources.Add(path, b)
	return b, nil
}

// resolveInclude finds the header named by an #include directive
func (s *Session) resolveInclude(target string, quoted bool, fromDir string) (string, bool) {
	if filepath.IsAbs(target) {
		return target, isRegularFile(target)
	}

	var dirs []string
	if quoted {
		dirs = append(dirs, fromDir)
	}
	dirs = append(dirs, s.includePaths...)

	for _, dir := range dirs {
		candidate := filepath.Clean(filepath.Join(dir, target))
		if isRegularFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// sourceFile is one parsed file of a translation unit
type sourceFile struct {
	path    string
	content []byte
	tree    *sitter.Tree
}

// TranslationUnit is one parsed input file together with the headers it
// pulls in
type TranslationUnit struct {
	session  *Session
	language Language
	main     *sourceFile
	files    map[string]*sourceFile
	// included tracks headers already spliced, so each appears once
	included map[string]bool
	// resolved maps each #include seen while loading to its header
	resolved map[includeKey]string
	root     *entity
}

// Path returns the absolute path of the parsed file
func (tu *TranslationUnit) Path() string { return tu.main.path }

// Language returns the language the unit was parsed as
func (tu *TranslationUnit) Language() Language { return tu.language }

// Root returns the translation unit entity
func (tu *TranslationUnit) Root() ast.Entity { return tu.root }

// HasErrors reports whether the main file's tree contains syntax errors
func (tu *TranslationUnit) HasErrors() bool { return tu.main.tree.RootNode().HasError() }

// Headers returns the resolved headers, sorted
func (tu *TranslationUnit) Headers() []string {
	var out []string
	for p := range tu.files {
		if p != tu.main.path {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// loadIncludes parses every header reachable from f. Headers that cannot be
// found or read are skipped.
func (tu *TranslationUnit) loadIncludes(ctx context.Context, f *sourceFile) error {
	for _, inc := range findIncludes(f.tree.RootNode(), f.content) {
		if err := ctx.Err(); err != nil {
			return err
		}

		path, ok := tu.session.resolveInclude(inc.target, inc.quoted, filepath.Dir(f.path))
		if !ok {
			tu.session.log.WithFields(logrus.Fields{"file": f.path, "include": inc.target}).Debug("include not resolved")
			continue
		}
		tu.resolved[includeKey{dir: filepath.Dir(f.path), includeDirective: inc}] = path
		if _, done := tu.files[path]; done {
			continue
		}

		content, err := tu.session.readSource(path)
		if err != nil {
			tu.session.log.WithError(err).WithField("include", path).Warn("failed to read header")
			continue
		}
		header, err := tu.session.parseFile(ctx, path, content, tu.language)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrSessionClosed) {
				return err
			}
			tu.session.log.WithError(err).WithField("include", path).Warn("failed to parse header")
			continue
		}
		if header.tree.RootNode().HasError() {
			tu.session.log.WithField("include", path).Debug("syntax errors in header")
		}
		tu.files[path] = header
		if err := tu.loadIncludes(ctx, header); err != nil {
			return err
		}
	}
	return nil
}

// includeDirective is one #include found in a tree
type includeDirective struct {
	target string
	quoted bool
}

type includeKey struct {
	dir string
	includeDirective
}

func findIncludes(root *sitter.Node, content []byte) []includeDirective {
	var out []includeDirective
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "preproc_include" {
			if inc, ok := parseInclude(n, content); ok {
				out = append(out, inc)
			}
			return
		}
		// function bodies are never expanded
		if n.Type() == "compound_statement" {
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return out
}

func parseInclude(n *sitter.Node, content []byte) (includeDirective, bool) {
	path := n.ChildByFieldName("path")
	if path == nil {
		return includeDirective{}, false
	}
	text := path.Content(content)
	switch path.Type() {
	case "string_literal":
		return includeDirective{target: trimPair(text, '"', '"'), quoted: true}, true
	case "system_lib_string":
		return includeDirective{target: trimPair(text, '<', '>')}, true
	}
	return includeDirective{}, false
}

func trimPair(s string, left, right byte) string {
	if len(s) >= 2 && s[0] == left && s[len(s)-1] == right {
		return s[1 : len(s)-1]
	}
	return s
}
