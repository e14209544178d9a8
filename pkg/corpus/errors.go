package corpus

import "errors"

var (
	// ErrEmptyCorpus indicates a corpus with no usable text, either because
	// nothing was loaded or because cleaning removed everything.
	ErrEmptyCorpus = errors.New("corpus is empty")

	// ErrNotFound indicates a lookup of a corpus name that was never added.
	ErrNotFound = errors.New("corpus not found")

	// ErrInvalidArgument indicates an argument outside its documented range,
	// such as a non-positive weight or a duplicate corpus name.
	ErrInvalidArgument = errors.New("invalid argument")
)
