// Package normalisers turns files into plain text ready for chunking.
// Each sub-package handles one format; Registry picks one by file extension
// and falls back to plain text.
package normalisers
