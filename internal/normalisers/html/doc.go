// Package html provides a Normaliser for HTML documents.
// It strips markup and decodes entities.
package html
