package ast

// Program is the root of a parsed compilation unit: an ordered sequence of
// top-level items (struct definitions, function declarations, and bare
// statements — spec.md's end-to-end scenarios execute top-level `let` and
// expression statements directly, with no implicit `main`).
type Program struct {
	Items []Stmt
}
