package parser

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cinject/cli/internal/ast"
	"github.com/cinject/cli/internal/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := NewSession(opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

// outline lists every non-Other entity below e as "Kind name definition",
// indented by depth
func outline(e ast.Entity) []string {
	var out []string
	var walk func(e ast.Entity, depth int)
	walk = func(e ast.Entity, depth int) {
		for _, c := range e.Children() {
			if c.Kind() == ast.KindOther {
				continue
			}
			def := "decl"
			if c.IsDefinition() {
				def = "def"
			}
			out = append(out, strings.Repeat("  ", depth)+string(c.Kind())+" "+c.Name()+" "+def)
			walk(c, depth+1)
		}
	}
	walk(e, 0)
	return out
}

const shapesCpp = `#include <vector>

int add(int a, int b);

int add(int a, int b) {
  return a + b;
}

struct Point {
  int x;
  int norm() const {
    return x * x;
  }
  void scale(int k);
};

void Point::scale(int k) {
  x *= k;
}

namespace geo {
class Shape {
 public:
  virtual ~Shape() {}
  virtual double area() const = 0;
};

template <typename T>
T twice(T v) {
  return v + v;
}
}  // namespace geo

template <typename T>
class Box {
  T value;
 public:
  T get() const { return value; }
};

template <typename T>
class Box<T*> {
 public:
  T* get() const { return nullptr; }
};

class Fwd;
`

func TestParse_CppOutline(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "shapes.cpp", shapesCpp)

	tu, err := newSession(t, Options{}).Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, LanguageCPP, tu.Language())
	assert.False(t, tu.HasErrors())
	assert.Empty(t, tu.Headers())
	assert.Equal(t, "shapes.cpp", tu.Root().Name())

	assert.Equal(t, []string{
		"FunctionDecl add decl",
		"FunctionDecl add def",
		"StructDecl Point def",
		"  Method norm def",
		"  Method scale decl",
		"Method scale def",
		"Namespace geo def",
		"  ClassDecl Shape def",
		"    Method ~Shape def",
		"    Method area decl",
		"  FunctionTemplate twice def",
		"ClassTemplate Box def",
		"  Method get def",
		"ClassTemplatePartialSpecialization Box def",
		"  Method get def",
		"ClassDecl Fwd decl",
	}, outline(tu.Root()))
}

func TestParse_LocationsPointAtNames(t *testing.T) {
	dir := t.TempDir()
	src := "int add(int a, int b) {\n  return a + b;\n}\n\nvoid Point::scale(int k) {\n}\n"
	path := writeFile(t, dir, "loc.cpp", src)

	tu, err := newSession(t, Options{}).Parse(context.Background(), path)
	require.NoError(t, err)

	children := tu.Root().Children()
	require.Len(t, children, 2)

	loc, ok := children[0].ExpansionLocation()
	require.True(t, ok)
	assert.Equal(t, ast.Location{File: path, Line: 1, Column: 5, Offset: 4}, loc)

	raw, ok := children[0].RawLocation()
	require.True(t, ok)
	assert.Equal(t, loc, raw)

	loc, ok = children[1].ExpansionLocation()
	require.True(t, ok)
	assert.Equal(t, uint(strings.Index(src, "scale")), loc.Offset)
	assert.Equal(t, uint(5), loc.Line)
	assert.Equal(t, uint(13), loc.Column)
}

func TestParse_CollectsSitesInSourceOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "shapes.cpp", shapesCpp)

	tu, err := newSession(t, Options{}).Parse(context.Background(), path)
	require.NoError(t, err)

	sites, errs := discovery.NewCollector(discovery.NewTargetSet(path), false).Collect(tu.Root())
	require.Empty(t, errs)

	var names []string
	for _, s := range sites {
		names = append(names, s.Name)
		assert.Equal(t, byte('('), shapesCpp[int(s.Offset)+len(s.Name)], s.Name)
	}
	assert.Equal(t, []string{"add", "norm", "scale", "~Shape", "twice", "get", "get"}, names)

	groups := discovery.Group(sites)
	require.Len(t, groups, 1)
	assert.NoError(t, groups[0].Validate())
}

func TestParse_DefaultedAndLinkage(t *testing.T) {
	dir := t.TempDir()
	src := `extern "C" {
void c_api(void) {
}
}

struct S {
  S() = default;
  S(int) {}
};
`
	path := writeFile(t, dir, "s.cpp", src)

	tu, err := newSession(t, Options{}).Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"FunctionDecl c_api def",
		"StructDecl S def",
		"  Method S decl",
		"  Method S def",
	}, outline(tu.Root()))
}

func TestParse_FunctionPointersAreNotFunctions(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fp.c", "int (*handler)(int);\nint value = 3;\n")

	tu, err := newSession(t, Options{}).Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Empty(t, outline(tu.Root()))
	for _, c := range tu.Root().Children() {
		assert.Equal(t, ast.KindOther, c.Kind())
	}
}

func TestParse_CUsesCGrammar(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", "static int twice(int v) {\n  return v * 2;\n}\n")

	tu, err := newSession(t, Options{}).Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, LanguageC, tu.Language())
	assert.Equal(t, []string{"FunctionDecl twice def"}, outline(tu.Root()))
}

func TestParse_IncludesAreSplicedOnce(t *testing.T) {
	dir := t.TempDir()
	header := writeFile(t, dir, "util.h", `#ifndef UTIL_H
#define UTIL_H
static inline int clamp(int v) {
  return v < 0 ? 0 : v;
}
#endif
`)
	path := writeFile(t, dir, "main.c", `#include "util.h"
#include "util.h"
#include "missing.h"

int main(void) {
  return clamp(-1);
}
`)

	tu, err := newSession(t, Options{}).Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{header}, tu.Headers())
	assert.Equal(t, []string{
		"FunctionDecl clamp def",
		"FunctionDecl main def",
	}, outline(tu.Root()))

	var clampLoc ast.Location
	for _, c := range tu.Root().Children() {
		if c.Name() == "clamp" {
			clampLoc, _ = c.RawLocation()
		}
	}
	assert.Equal(t, header, clampLoc.File)

	sites, _ := discovery.NewCollector(discovery.NewTargetSet(path), false).Collect(tu.Root())
	require.Len(t, sites, 1)
	assert.Equal(t, "main", sites[0].Name)

	sites, _ = discovery.NewCollector(discovery.NewTargetSet(path), true).Collect(tu.Root())
	require.Len(t, sites, 2)
	assert.Equal(t, "clamp", sites[0].Name)
	assert.Equal(t, header, sites[0].File)
}

func TestParse_AngleIncludesUseIncludePaths(t *testing.T) {
	dir := t.TempDir()
	header := writeFile(t, dir, "include/lib/api.h", "int api_version(void) {\n  return 2;\n}\n")
	path := writeFile(t, dir, "src/app.c", "#include <lib/api.h>\n\nint run(void) {\n  return api_version();\n}\n")

	tu, err := newSession(t, Options{}).Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, tu.Headers())

	tu, err = newSession(t, Options{IncludePaths: []string{filepath.Join(dir, "include")}}).Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{header}, tu.Headers())
	assert.Equal(t, []string{
		"FunctionDecl api_version def",
		"FunctionDecl run def",
	}, outline(tu.Root()))
}

func TestParse_SyntaxErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.c", "int f( {\n")

	tu, err := newSession(t, Options{}).Parse(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, tu.HasErrors())

	_, err = newSession(t, Options{Strict: true}).Parse(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyntax)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, path, perr.Path)
}

func TestParse_MissingFile(t *testing.T) {
	_, err := newSession(t, Options{}).Parse(context.Background(), filepath.Join(t.TempDir(), "nope.c"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestParse_AfterClose(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.c", "void a(void) {}\n")

	s, err := NewSession(Options{})
	require.NoError(t, err)
	s.Close()

	_, err = s.Parse(context.Background(), path)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path    string
		content string
		want    Language
	}{
		{"a.c", "int x;", LanguageC},
		{"a.cc", "int x;", LanguageCPP},
		{"a.cpp", "int x;", LanguageCPP},
		{"a.hpp", "int x;", LanguageCPP},
		{"a.h", "namespace x {\n}\n", LanguageCPP},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, detectLanguage(tt.path, []byte(tt.content)))
		})
	}
}
