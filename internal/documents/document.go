// Package documents retrieves case documents from the document store and
// normalizes them into archive-ready form: images become single-page PDF
// documents, unsupported content types are dropped, and batch ordering is
// preserved from the incoming request.
package documents

import (
	"bytes"
	"hash/fnv"
)

// Document is an immutable fetched document. It lives for the duration of a
// single journaling request and is never persisted.
type Document struct {
	Title       string `json:"title"`
	Content     []byte `json:"content"`
	ContentType string `json:"content_type"`
}

// Equal compares documents by value, including byte content.
func (d Document) Equal(other Document) bool {
	return d.Title == other.Title &&
		d.ContentType == other.ContentType &&
		bytes.Equal(d.Content, other.Content)
}

// Hash returns a content-based hash consistent with Equal.
func (d Document) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(d.Title))
	h.Write([]byte{0})
	h.Write([]byte(d.ContentType))
	h.Write([]byte{0})
	h.Write(d.Content)
	return h.Sum64()
}

// Batch is an ordered group of documents sharing a logical origin. The first
// batch of a request holds the primary document, later batches are
// attachments.
type Batch []Document
