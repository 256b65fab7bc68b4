// Package glob compiles and matches shell-style path globs.
//
// A compiled Glob is a flat program of opcodes over a shared byte pool:
// literal slices, path separators, `?` skips, `*` (Many), `**`
// (ManyComponents), character classes, and brace-group alternation
// (SubPatternGroup/SubPattern). Matching walks the program against a
// path with no hidden mutable state, so a single compiled Glob is safe
// to reuse across repeated Matches calls.
package glob
