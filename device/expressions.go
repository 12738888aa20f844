package device

import (
	"sync"
	"unicode/utf8"

	"github.com/google/btree"
)

// Expressions is the per session table of defined expressions.
// Identifiers are negative, start at -2 and never change; -1 is the
// codepoint of empty glyphs and never names an expression.
type Expressions struct {
	mu   sync.RWMutex
	ids  map[string]int32
	tree *btree.BTreeG[expression]
	next int32
}

// NoExpression is the codepoint of an empty glyph.
const NoExpression int32 = -1

type expression struct {
	id   int32
	text string
}

func NewExpressions() *Expressions {
	return &Expressions{
		ids:  make(map[string]int32),
		tree: btree.NewG(8, func(a, b expression) bool { return a.id > b.id }),
		next: NoExpression - 1,
	}
}

// Define returns the codepoint of a single codepoint expression, otherwise
// the identifier of the expression, allocating it on first use. The empty
// expression is NoExpression.
func (e *Expressions) Define(expr string) int32 {
	if expr == `` {
		return NoExpression
	}
	if len(expr) == 1 && expr[0] < utf8.RuneSelf {
		return int32(expr[0])
	}
	if r, size := utf8.DecodeRuneInString(expr); size == len(expr) && (r != utf8.RuneError || size > 1) {
		return r
	}
	if e == nil {
		return NoExpression
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if id, ok := e.ids[expr]; ok {
		return id
	}
	id := e.next
	e.next--
	e.ids[expr] = id
	e.tree.ReplaceOrInsert(expression{id: id, text: expr})
	return id
}

// Lookup resolves a codepoint to its text.
func (e *Expressions) Lookup(codepoint int32) (string, bool) {
	if codepoint >= 0 {
		if !utf8.ValidRune(codepoint) {
			return ``, false
		}
		return string(rune(codepoint)), true
	}
	if e == nil {
		return ``, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	ex, ok := e.tree.Get(expression{id: codepoint})
	return ex.text, ok
}

// Len is the number of defined expressions.
func (e *Expressions) Len() int {
	if e == nil {
		return 0
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree.Len()
}

// Ascend calls fn in definition order until fn returns false.
func (e *Expressions) Ascend(fn func(id int32, text string) bool) {
	if e == nil || fn == nil {
		return
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	e.tree.Ascend(func(ex expression) bool { return fn(ex.id, ex.text) })
}
