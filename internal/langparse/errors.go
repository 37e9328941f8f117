package langparse

import "errors"

// errNilTree is returned by an adapter when tree-sitter's Parse call
// itself returns a nil tree — observed from malformed or truncated
// input rather than a grammar panic, so it doesn't need SupervisedParse's
// recover path, just a typed error to wrap.
var errNilTree = errors.New("langparse: parser returned a nil tree")
