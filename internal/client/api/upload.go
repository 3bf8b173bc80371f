package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
)

// ProgressFunc receives the number of bytes sent so far and the total size
type ProgressFunc func(sent, total int64)

// progressReader reports read progress of a body of known length
type progressReader struct {
	r     io.Reader
	fn    ProgressFunc
	total int64
	sent  int64
	// mu защищает sent: транспорт может читать тело из другой горутины
	mu sync.Mutex
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.sent += int64(n)
		sent := p.sent
		p.mu.Unlock()
		p.fn(sent, p.total)
	}
	return n, err
}

// Upload describes a multipart file upload
type Upload struct {
	Content  io.Reader
	Fields   map[string]string
	Progress ProgressFunc
	Path     string
	// FileField - имя поля формы с файлом, по умолчанию "file"
	FileField string
	FileName  string
}

// NewUploadRequest buffers the multipart body so its length is known,
// then wraps it in a reader that reports progress.
func NewUploadRequest(u Upload) (Request, error) {
	field := u.FileField
	if field == "" {
		field = "file"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, value := range u.Fields {
		if err := mw.WriteField(name, value); err != nil {
			return Request{}, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	part, err := mw.CreateFormFile(field, u.FileName)
	if err != nil {
		return Request{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, u.Content); err != nil {
		return Request{}, fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Request{}, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	total := int64(buf.Len())
	var body io.Reader = bytes.NewReader(buf.Bytes())
	if u.Progress != nil {
		body = &progressReader{r: body, fn: u.Progress, total: total}
	}

	return Request{
		Method:        http.MethodPost,
		Path:          u.Path,
		Body:          body,
		ContentType:   mw.FormDataContentType(),
		ContentLength: total,
	}, nil
}
