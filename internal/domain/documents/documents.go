// Package documents turns uploaded data URIs into embedded Document records.
package documents

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"hrdesk/internal/domain/records"
)

var (
	ErrEmpty       = errors.New("empty data url")
	ErrMalformed   = errors.New("malformed data url")
	ErrUnsupported = errors.New("unsupported document type")
	ErrTooLarge    = errors.New("document too large")
)

// DefaultMimes is the accepted set when the caller passes none.
var DefaultMimes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type Upload struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	FileName string `json:"fileName"`
	Data     string `json:"data"`
}

// Parse decodes a base64 data URI. The declared MIME type must be allowed and
// agree with the sniffed content type.
func Parse(dataURL string, allowedMimes []string, maxBytes int) ([]byte, string, error) {
	raw := strings.TrimSpace(dataURL)
	if raw == "" {
		return nil, "", ErrEmpty
	}
	if !strings.HasPrefix(raw, "data:") {
		return nil, "", fmt.Errorf("%w: missing data: prefix", ErrMalformed)
	}
	comma := strings.Index(raw, ",")
	if comma <= 5 {
		return nil, "", fmt.Errorf("%w: missing payload", ErrMalformed)
	}
	meta := raw[5:comma]
	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return nil, "", fmt.Errorf("%w: payload must be base64", ErrMalformed)
	}
	declared := strings.ToLower(strings.TrimSpace(meta[:len(meta)-len(";base64")]))
	if declared == "" {
		return nil, "", fmt.Errorf("%w: missing mime type", ErrMalformed)
	}
	if len(allowedMimes) == 0 {
		allowedMimes = DefaultMimes
	}
	if !contains(allowedMimes, declared) {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupported, declared)
	}

	payload := raw[comma+1:]
	if maxBytes > 0 && base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+3 {
		return nil, "", ErrTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return nil, "", ErrTooLarge
	}

	sniffed := mimetype.Detect(data)
	if !sniffed.Is(declared) && !compatible(declared, sniffed) {
		return nil, "", fmt.Errorf("%w: content is %s, declared %s", ErrUnsupported, sniffed.String(), declared)
	}
	return data, declared, nil
}

// New builds a Document from an upload. The id is a millisecond stamp bumped
// past any id already present in existing.
func New(up Upload, stamp int64, existing []records.Document, allowedMimes []string, maxBytes int) (records.Document, error) {
	data, mime, err := Parse(up.Data, allowedMimes, maxBytes)
	if err != nil {
		return records.Document{}, err
	}
	for _, doc := range existing {
		if doc.ID >= stamp {
			stamp = doc.ID + 1
		}
	}
	name := strings.TrimSpace(up.Name)
	if name == "" {
		name = up.FileName
	}
	return records.Document{
		ID:       stamp,
		Type:     strings.TrimSpace(up.Type),
		Name:     name,
		FileName: up.FileName,
		MimeType: mime,
		Size:     int64(len(data)),
		Data:     strings.TrimSpace(up.Data),
	}, nil
}

// Remove drops the document with id and reports whether it existed.
func Remove(docs []records.Document, id int64) ([]records.Document, bool) {
	for i, doc := range docs {
		if doc.ID == id {
			return append(docs[:i], docs[i+1:]...), true
		}
	}
	return docs, false
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), value) {
			return true
		}
	}
	return false
}

// compatible tolerates sniffers that stop at a container type, e.g. zip for
// docx. A generic octet-stream result only passes for declared types the
// sniffer has no signature for.
func compatible(declared string, sniffed *mimetype.MIME) bool {
	for m := sniffed; m != nil; m = m.Parent() {
		if m.Is(declared) {
			return true
		}
	}
	switch sniffed.String() {
	case "application/octet-stream":
		return mimetype.Lookup(declared) == nil
	case "application/zip":
		return strings.Contains(declared, "openxmlformats") || strings.Contains(declared, "opendocument")
	case "application/x-ole-storage":
		return declared == "application/msword" || strings.HasPrefix(declared, "application/vnd.ms-")
	}
	return strings.HasPrefix(sniffed.String(), "text/plain") && strings.HasPrefix(declared, "text/")
}
