package discovery

import (
	"path/filepath"
	"testing"

	"github.com/cinject/cli/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// macroExpanded returns a definition declared in declaring but expanded while
// parsing expandedIn
func macroExpanded(name, declaring, expandedIn string, offset uint) *ast.Node {
	raw := ast.Location{File: declaring, Line: 3, Column: 1, Offset: offset}
	exp := ast.Location{File: expandedIn, Line: 10, Column: 1, Offset: offset + 100}
	return &ast.Node{
		NodeKind:   ast.KindFunctionDecl,
		Definition: true,
		NodeName:   name,
		Raw:        &raw,
		Expansion:  &exp,
	}
}

func TestInScope(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.h")
	b := filepath.Join(dir, "b.cpp")

	t.Run("follow includes accepts everything", func(t *testing.T) {
		n := macroExpanded("f", a, b, 0)
		assert.True(t, InScope(n, NewTargetSet(), true))
	})

	t.Run("declaring file decides, not the expansion file", func(t *testing.T) {
		n := macroExpanded("f", a, b, 0)
		assert.False(t, InScope(n, NewTargetSet(b), false))
		assert.True(t, InScope(n, NewTargetSet(a), false))
		assert.True(t, InScope(n, NewTargetSet(a, b), false))
	})

	t.Run("missing raw location is out of scope", func(t *testing.T) {
		n := &ast.Node{NodeKind: ast.KindFunctionDecl, Definition: true, NodeName: "f"}
		assert.False(t, InScope(n, NewTargetSet(a), false))
	})

	t.Run("relative and absolute paths match", func(t *testing.T) {
		abs, err := filepath.Abs("x.cpp")
		require.NoError(t, err)
		set := NewTargetSet("x.cpp")
		assert.True(t, set.Contains(abs))
		assert.True(t, NewTargetSet(abs).Contains("./x.cpp"))
	})
}

func TestCollect_ScopeUsesDeclaringFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.h")
	b := filepath.Join(dir, "b.cpp")

	root := ast.NewNode(ast.KindOther, "b.cpp", true, ast.Location{File: b})
	root.Add(
		macroExpanded("from_a", a, b, 10),
		ast.NewNode(ast.KindFunctionDecl, "from_b", true, ast.Location{File: b, Line: 20, Column: 1, Offset: 300}),
	)

	sites, errs := NewCollector(NewTargetSet(b), false).Collect(root)
	require.Empty(t, errs)
	require.Len(t, sites, 1)
	assert.Equal(t, "from_b", sites[0].Name)

	sites, errs = NewCollector(NewTargetSet(a), false).Collect(root)
	require.Empty(t, errs)
	require.Len(t, sites, 1)
	assert.Equal(t, "from_a", sites[0].Name)
	// the site itself is reported at the expansion location
	assert.Equal(t, b, sites[0].File)
	assert.Equal(t, uint(110), sites[0].Offset)
}
