package parser

import (
	"path/filepath"

	"github.com/go-enry/go-enry/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Language is the grammar a translation unit is parsed with
type Language string

const (
	LanguageC   Language = "C"
	LanguageCPP Language = "C++"
)

func (l Language) grammar() *sitter.Language {
	if l == LanguageC {
		return c.GetLanguage()
	}
	return cpp.GetLanguage()
}

// detectLanguage picks the grammar for a translation unit. Unambiguous
// extensions decide directly; headers fall back to content classification.
// Anything that is not clearly C is parsed as C++, which accepts most C.
// Headers are parsed with the language of the unit that includes them.
func detectLanguage(path string, content []byte) Language {
	lang, safe := enry.GetLanguageByExtension(path)
	if !safe {
		lang = enry.GetLanguage(filepath.Base(path), content)
	}
	if lang == "C" {
		return LanguageC
	}
	return LanguageCPP
}
