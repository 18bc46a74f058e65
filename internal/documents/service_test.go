package documents

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeStore struct {
	objects map[string][]byte
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(ctx context.Context, key, contentType string, body []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = body
	return nil
}

func (f *fakeStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for key, body := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(body)), LastModified: time.Now()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func buildZip(t *testing.T, names ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := f.Write([]byte("content of " + name)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

func TestService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		fileName    string
		contentType string
		data        []byte
		wantErr     error
		wantType    string
		wantEntries int
	}{
		{
			name:        "pdf",
			fileName:    "invoice.pdf",
			contentType: "application/pdf",
			data:        pdfBytes,
			wantType:    "application/pdf",
		},
		{
			name:        "type detected from content",
			fileName:    "scan.pdf",
			contentType: "application/octet-stream",
			data:        pdfBytes,
			wantType:    "application/pdf",
		},
		{
			name:        "zip with two documents",
			fileName:    "bundle.zip",
			contentType: "application/zip",
			data:        buildZip(t, "a.pdf", "b.XML", "readme.txt"),
			wantType:    "application/zip",
			wantEntries: 2,
		},
		{
			name:        "zip with three documents",
			fileName:    "bundle.zip",
			contentType: "application/zip",
			data:        buildZip(t, "a.pdf", "b.pdf", "c.xml"),
			wantErr:     ErrInvalidArchive,
		},
		{
			name:        "zip without documents",
			fileName:    "bundle.zip",
			contentType: "application/zip",
			data:        buildZip(t, "readme.txt"),
			wantErr:     ErrInvalidArchive,
		},
		{
			name:        "corrupt zip",
			fileName:    "bundle.zip",
			contentType: "application/zip",
			data:        []byte("not a zip"),
			wantErr:     ErrInvalidArchive,
		},
		{
			name:        "unsupported type",
			fileName:    "run.exe",
			contentType: "application/x-msdownload",
			data:        []byte("MZ"),
			wantErr:     ErrUnsupportedType,
		},
		{
			name:        "empty file",
			fileName:    "empty.pdf",
			contentType: "application/pdf",
			data:        nil,
			wantErr:     ErrEmptyFile,
		},
		{
			name:        "too large",
			fileName:    "big.pdf",
			contentType: "application/pdf",
			data:        make([]byte, MaxFileBytes+1),
			wantErr:     ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc := NewService(store, zap.NewNop())

			doc, err := svc.Upload(ctx, tt.fileName, tt.contentType, tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if len(store.objects) != 0 {
					t.Error("rejected document must not be stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("Upload() error = %v", err)
			}

			if doc.ContentType != tt.wantType {
				t.Errorf("ContentType = %s, want %s", doc.ContentType, tt.wantType)
			}
			if len(doc.ExtractedFiles) != tt.wantEntries {
				t.Errorf("ExtractedFiles = %v, want %d entries", doc.ExtractedFiles, tt.wantEntries)
			}
			if !strings.HasSuffix(doc.Name, "-"+tt.fileName) {
				t.Errorf("Name = %s, want suffix %s", doc.Name, tt.fileName)
			}
			if _, ok := store.objects[keyPrefix+doc.Name]; !ok {
				t.Errorf("object %s not stored", doc.Name)
			}
		})
	}

	t.Run("store failure", func(t *testing.T) {
		store := newFakeStore()
		store.putErr = errors.New("s3 unavailable")
		svc := NewService(store, zap.NewNop())

		if _, err := svc.Upload(ctx, "a.pdf", "application/pdf", pdfBytes); err == nil {
			t.Error("expected error")
		}
	})
}

func TestService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())

	first, err := svc.Upload(ctx, "first.pdf", "application/pdf", pdfBytes)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	second, err := svc.Upload(ctx, "second.pdf", "application/pdf", pdfBytes)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	docs, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Name != second.Name || docs[1].Name != first.Name {
		t.Errorf("expected newest first, got %s, %s", docs[0].Name, docs[1].Name)
	}
	if docs[0].FileName != "second.pdf" {
		t.Errorf("FileName = %s, want second.pdf", docs[0].FileName)
	}

	if err := svc.Delete(ctx, first.Name); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, first.Name); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "../secret"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"invoice.pdf":         "invoice.pdf",
		"dir/sub/invoice.pdf": "invoice.pdf",
		`C:\docs\invoice.pdf`: "invoice.pdf",
		"hoá đơn tháng 1.pdf": "hoá_đơn_tháng_1.pdf",
		"":                    "document",
	}

	for in, want := range tests {
		if got := sanitizeFileName(in); got != want {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
