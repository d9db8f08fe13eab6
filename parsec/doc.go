// Package parsec provides a small parser-combinator toolkit over token
// streams, and a regular-expression tokeniser that produces those streams.
//
// Rules are plain functions from an Input cursor to a Result. A Result has
// one of four statuses: success, failure (the rule did not match and another
// alternative may be tried), error (the rule matched far enough to commit
// and then failed) and cut. A Cut step inside a Sequence commits the
// sequence: any later failure becomes an error, which FirstOf, Optional and
// the repetition rules propagate instead of backtracking.
package parsec
