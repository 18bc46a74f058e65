package documents

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	// MaxFileBytes - предельный размер загружаемого документа.
	MaxFileBytes = 10 << 20

	keyPrefix = "documents/"
)

var (
	ErrEmptyFile        = errors.New("no file uploaded")
	ErrFileTooLarge     = errors.New("file size exceeds 10MB limit")
	ErrUnsupportedType  = errors.New("unsupported file type")
	ErrInvalidArchive   = errors.New("zip archive must contain 1-2 .pdf or .xml files")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidName      = errors.New("invalid document name")
)

var allowedTypes = map[string]bool{
	"application/pdf":              true,
	"image/jpeg":                   true,
	"image/jpg":                    true,
	"image/png":                    true,
	"application/zip":              true,
	"application/x-zip-compressed": true,
	"application/xml":              true,
	"text/xml":                     true,
}

// Document - загруженный документ.
type Document struct {
	Name           string    `json:"name"`
	FileName       string    `json:"fileName"`
	Size           int64     `json:"size"`
	ContentType    string    `json:"contentType,omitempty"`
	UploadedAt     time.Time `json:"uploadedAt"`
	ExtractedFiles []string  `json:"extractedFiles,omitempty"`
}

// Service загружает, перечисляет и удаляет подтверждающие документы.
type Service struct {
	store  ObjectStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService создаёт новый экземпляр Service.
func NewService(store ObjectStore, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Upload проверяет документ и сохраняет его под новым ключом.
func (s *Service) Upload(ctx context.Context, fileName, contentType string, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if len(data) > MaxFileBytes {
		return nil, ErrFileTooLarge
	}

	ct := detectContentType(contentType, data)
	if !allowedTypes[ct] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}

	doc := &Document{
		FileName:    sanitizeFileName(fileName),
		Size:        int64(len(data)),
		ContentType: ct,
		UploadedAt:  s.now(),
	}

	if ct == "application/zip" || ct == "application/x-zip-compressed" {
		entries, err := archiveEntries(data)
		if err != nil {
			return nil, err
		}
		doc.ExtractedFiles = entries
	}

	doc.Name = ulid.Make().String() + "-" + doc.FileName
	if err := s.store.Put(ctx, keyPrefix+doc.Name, ct, data); err != nil {
		return nil, err
	}

	s.logger.Info("document uploaded",
		zap.String("name", doc.Name),
		zap.String("content_type", ct),
		zap.Int64("size", doc.Size),
	)

	return doc, nil
}

// List возвращает документы, новые первыми.
func (s *Service) List(ctx context.Context) ([]*Document, error) {
	objects, err := s.store.List(ctx, keyPrefix)
	if err != nil {
		return nil, err
	}

	docs := make([]*Document, 0, len(objects))
	for _, obj := range objects {
		name := strings.TrimPrefix(obj.Key, keyPrefix)
		if name == "" {
			continue
		}
		docs = append(docs, &Document{
			Name:       name,
			FileName:   originalFileName(name),
			Size:       obj.Size,
			UploadedAt: obj.LastModified,
		})
	}

	// ULID в начале имени упорядочен по времени загрузки.
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Name > docs[j].Name
	})

	return docs, nil
}

// Delete удаляет документ по имени.
func (s *Service) Delete(ctx context.Context, name string) error {
	if name == "" || strings.Contains(name, "/") {
		return ErrInvalidName
	}

	key := keyPrefix + name
	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrDocumentNotFound
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}

	s.logger.Info("document deleted", zap.String("name", name))
	return nil
}

// detectContentType берёт заявленный тип, а для пустого или
// application/octet-stream определяет его по содержимому.
func detectContentType(declared string, data []byte) string {
	if declared != "" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != "application/octet-stream" {
			return strings.ToLower(mediaType)
		}
	}

	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return "application/octet-stream"
	}
	return mediaType
}

// archiveEntries возвращает .pdf и .xml файлы архива.
// Архив допустим, если таких файлов один или два.
func archiveEntries(data []byte) ([]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	var entries []string
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		switch strings.ToLower(path.Ext(f.Name)) {
		case ".pdf", ".xml":
			entries = append(entries, f.Name)
		}
	}

	if len(entries) < 1 || len(entries) > 2 {
		return nil, ErrInvalidArchive
	}
	return entries, nil
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r < 0x20:
			return '_'
		case r == ' ':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		return "document"
	}
	return name
}

// originalFileName отрезает ULID-префикс от имени объекта.
func originalFileName(name string) string {
	if len(name) > ulid.EncodedSize+1 && name[ulid.EncodedSize] == '-' {
		return name[ulid.EncodedSize+1:]
	}
	return name
}
