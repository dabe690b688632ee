// Package bbcode finds the bracketed reference tags players write in chat,
// e.g. [coord]500|500[/coord] or [player]Rommel[/player], and splices their
// rewritten forms back into the message by position.
//
// Each tag kind is scanned independently over the same text. Matching is
// non-greedy inside one open/close pair, so the first close delimiter ends a
// tag and nesting of the same kind is not supported.
package bbcode
