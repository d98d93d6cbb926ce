package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/akolanti/ragrouter/internal/domain/commonModels"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
)

type mockStore struct {
	addFunc func(ctx context.Context, chunks []commonModels.DocChunk) error
}

func (m *mockStore) Add(ctx context.Context, chunks []commonModels.DocChunk) error {
	return m.addFunc(ctx, chunks)
}

func (m *mockStore) Query(ctx context.Context, text string, ownerId string, k int) (commonModels.RetrievalResult, error) {
	return commonModels.RetrievalResult{}, nil
}

func (m *mockStore) DeleteOwner(ctx context.Context, ownerId string) (int, error) {
	return 0, nil
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestExtractText(t *testing.T) {
	binary := []byte{0xff, 0xfe, 0x00, 0x81, 0x42}

	tests := []struct {
		name        string
		file        string
		data        []byte
		contentType string
		want        string
		wantKind    ragErrors.Kind
	}{
		{
			name:        "utf8 text kept as is",
			file:        "notes.txt",
			data:        []byte("Zażółć gęślą jaźń"),
			contentType: "text/plain",
			want:        "Zażółć gęślą jaźń",
		},
		{
			name:        "binary becomes base64",
			file:        "blob.bin",
			data:        binary,
			contentType: ContentTypeBinary,
			want:        base64.StdEncoding.EncodeToString(binary),
		},
		{
			name:        "empty file",
			file:        "empty.txt",
			data:        []byte{},
			contentType: "text/plain",
			want:        "",
		},
		{
			name:        "malformed pdf is a decode error",
			file:        "broken.pdf",
			data:        []byte("this is not a pdf at all"),
			contentType: ContentTypePDF,
			wantKind:    ragErrors.KindInvalidInput,
		},
		{
			name:        "pdf detected from extension",
			file:        "broken.PDF",
			data:        []byte("%PDF-1.4 garbage"),
			contentType: "",
			wantKind:    ragErrors.KindInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.file, tt.data)
			got, err := ExtractText(path, tt.contentType)

			if tt.wantKind != "" {
				if err == nil {
					t.Fatalf("expected %s error, got text %q", tt.wantKind, got)
				}
				if kind := ragErrors.KindOf(err); kind != tt.wantKind {
					t.Errorf("error kind = %s, want %s", kind, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectContentType_KeepsDeclared(t *testing.T) {
	path := writeTemp(t, "a.txt", []byte("hello"))
	if got := DetectContentType(path, "text/markdown; charset=utf-8"); got != "text/markdown" {
		t.Errorf("got %q", got)
	}
}

func TestDetectContentType_SniffsGeneric(t *testing.T) {
	path := writeTemp(t, "a.bin", []byte("plain words only"))
	if got := DetectContentType(path, ContentTypeBinary); got != "text/plain" {
		t.Errorf("got %q, want text/plain", got)
	}
}

func TestPrepareChunks(t *testing.T) {
	doc := commonModels.Document{OwnerId: "42", Filename: "report.pdf", ContentType: ContentTypePDF}
	chunks := PrepareChunks(doc, []string{"first", "second"})

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	idPattern := regexp.MustCompile(`^report\.pdf-(\d+)-[0-9a-f-]{36}$`)
	for i, c := range chunks {
		if c.OwnerId != "42" || c.SourceFilename != "report.pdf" || c.ContentType != ContentTypePDF {
			t.Errorf("metadata mismatch in chunk %d: %+v", i, c)
		}
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
		m := idPattern.FindStringSubmatch(c.UniqueId)
		if m == nil || m[1] != []string{"0", "1"}[i] {
			t.Errorf("unexpected unique id %q", c.UniqueId)
		}
	}
	if chunks[0].UniqueId == chunks[1].UniqueId {
		t.Error("unique ids collide")
	}
}

func TestBatchIngest(t *testing.T) {
	chunks := make([]commonModels.DocChunk, 150) // 100 + 50
	for i := range chunks {
		chunks[i] = commonModels.DocChunk{Text: "test content"}
	}

	var sizes []int
	store := &mockStore{
		addFunc: func(ctx context.Context, c []commonModels.DocChunk) error {
			sizes = append(sizes, len(c))
			return nil
		},
	}

	if err := BatchIngest(context.Background(), chunks, store); err != nil {
		t.Fatalf("BatchIngest failed: %v", err)
	}
	if len(sizes) != 2 || sizes[0] != 100 || sizes[1] != 50 {
		t.Errorf("unexpected batches %v", sizes)
	}
}

func TestBatchIngest_Error(t *testing.T) {
	store := &mockStore{
		addFunc: func(ctx context.Context, c []commonModels.DocChunk) error {
			return ragErrors.StoreUnavailable("down", errors.New("refused"))
		},
	}

	err := BatchIngest(context.Background(), []commonModels.DocChunk{{Text: "hi"}}, store)
	if !ragErrors.IsStoreUnavailable(err) {
		t.Errorf("expected store unavailable to survive wrapping, got %v", err)
	}
}
