/*
Package passgen provides a character-level Markov chain toolkit for building
password wordlists from text corpora.

It builds n-gram frequency models from corpus text, generates fixed-length
candidate strings via frequency-weighted random walks (with dead-end recovery
and whitespace repair), scores candidates with Shannon and Markov entropy,
and provides composable filter and transformer chains for post-processing
generated batches.

All randomness flows through explicitly constructed generators, so a seeded
session is reproducible bit for bit. The package performs no file I/O;
models serialize through io.Reader/io.Writer pairs.
*/
package passgen
