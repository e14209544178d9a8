package passgen

import "errors"

var (
	// ErrInvalidArgument indicates an argument outside its documented range,
	// such as an n-gram order outside [2,5] or a negative candidate count.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyModel indicates an operation that requires a trained model was
	// called on a model with no entries.
	ErrEmptyModel = errors.New("model is empty")

	// ErrSeedNotFound indicates that a supplied seed string contains no
	// substring that is a key of the model.
	ErrSeedNotFound = errors.New("seed not found in model")

	// ErrInsufficientYield indicates that entropy-gated generation exhausted
	// its attempt budget before producing the requested number of candidates.
	ErrInsufficientYield = errors.New("insufficient yield")

	// ErrNotInitialized indicates an incremental update was attempted before
	// the model was built.
	ErrNotInitialized = errors.New("model not initialized")
)
