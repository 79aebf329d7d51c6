package client

import (
	"bytes"
	"io"
	"mime/multipart"
	"sort"
)

// File is a file part of a multipart form.
type File struct {
	Name    string
	Content io.Reader
}

// Form is a multipart/form-data body. Field order on the wire is sorted by name.
type Form struct {
	Fields map[string]string
	Files  map[string]File
}

// NewForm creates an empty form.
func NewForm() *Form {
	return &Form{Fields: map[string]string{}, Files: map[string]File{}}
}

// Set adds a text field. Empty values are skipped.
func (f *Form) Set(name, value string) *Form {
	if value != "" {
		f.Fields[name] = value
	}
	return f
}

// SetFile adds a file part. A nil content is skipped.
func (f *Form) SetFile(field, filename string, content io.Reader) *Form {
	if content != nil {
		f.Files[field] = File{Name: filename, Content: content}
	}
	return f
}

func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, name := range sortedKeys(f.Fields) {
		if err := w.WriteField(name, f.Fields[name]); err != nil {
			return nil, "", err
		}
	}
	for _, field := range sortedKeys(f.Files) {
		file := f.Files[field]
		part, err := w.CreateFormFile(field, file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
