/*
Package corpus loads and prepares training text for passgen models.

It provides configurable text cleaning (lowercasing, punctuation and digit
stripping, whitespace normalization), corpus validation and statistics, and
a weighted multi-corpus manager that merges several named sources into one
training text by proportional repetition.
*/
package corpus
