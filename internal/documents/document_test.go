package documents_test

import (
	"testing"

	"github.com/helsedok/dokjournal/internal/documents"
)

func TestDocumentEqual(t *testing.T) {
	base := documents.Document{
		Title:       "Application",
		Content:     []byte("content"),
		ContentType: "application/pdf",
	}

	tests := []struct {
		name  string
		other documents.Document
		want  bool
	}{
		{"identical", documents.Document{Title: "Application", Content: []byte("content"), ContentType: "application/pdf"}, true},
		{"different title", documents.Document{Title: "Attachment", Content: []byte("content"), ContentType: "application/pdf"}, false},
		{"different content", documents.Document{Title: "Application", Content: []byte("other"), ContentType: "application/pdf"}, false},
		{"different content type", documents.Document{Title: "Application", Content: []byte("content"), ContentType: "image/png"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Equal(tt.other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDocumentHash(t *testing.T) {
	a := documents.Document{Title: "Application", Content: []byte("content"), ContentType: "application/pdf"}
	b := documents.Document{Title: "Application", Content: []byte("content"), ContentType: "application/pdf"}

	if a.Hash() != b.Hash() {
		t.Error("Hash() differs for equal documents")
	}

	// The separator byte keeps field boundaries from colliding.
	c := documents.Document{Title: "Applicationcon", Content: []byte("tent"), ContentType: "application/pdf"}
	if a.Hash() == c.Hash() {
		t.Error("Hash() collides across shifted field boundaries")
	}
}
