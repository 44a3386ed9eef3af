package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Core record keys. Everything else is passthrough.
const (
	KeyFolderInfo           = "folder_info"
	KeyFilesWithPreviews    = "files_with_previews"
	KeyFilesWithoutPreviews = "files_without_previews"
	KeyOtherImages          = "other_images"
)

var coreKeys = []string{KeyFolderInfo, KeyFilesWithPreviews, KeyFilesWithoutPreviews, KeyOtherImages}

// FolderInfo summarizes one directory listing.
type FolderInfo struct {
	Path              string `json:"path"`
	TotalSizeBytes    int64  `json:"total_size_bytes"`
	TotalSizeReadable string `json:"total_size_readable"`
	FileCount         int    `json:"file_count"`
	SubdirCount       int    `json:"subdir_count"`
	ArchiveCount      int    `json:"archive_count"`
	ScanDate          string `json:"scan_date"`
}

// FileEntry describes one content file and its preview, if any.
type FileEntry struct {
	Name                string  `json:"name"`
	PathAbsolute        string  `json:"path_absolute"`
	SizeBytes           int64   `json:"size_bytes"`
	SizeReadable        string  `json:"size_readable"`
	PreviewFound        bool    `json:"preview_found"`
	PreviewName         string  `json:"preview_name,omitempty"`
	PreviewPathAbsolute string  `json:"preview_path_absolute,omitempty"`
	MatchMethod         string  `json:"match_method,omitempty"`
	MatchScore          float64 `json:"match_score,omitempty"`
}

// ImageEntry describes an image that no content file claimed.
type ImageEntry struct {
	Name         string `json:"name"`
	PathAbsolute string `json:"path_absolute"`
	SizeBytes    int64  `json:"size_bytes"`
	SizeReadable string `json:"size_readable"`
}

// Record is the decoded form of index.json.
type Record struct {
	FolderInfo           FolderInfo
	FilesWithPreviews    []FileEntry
	FilesWithoutPreviews []FileEntry
	OtherImages          []ImageEntry
	// Extra holds every non-core top-level key verbatim.
	Extra map[string]json.RawMessage
}

// MarshalJSON writes the core keys first, in fixed order, followed by the
// passthrough keys sorted by name. Empty lists encode as []. The bytes
// returned are not HTML-escaped, but json.Marshal escapes them again; use an
// Encoder with SetEscapeHTML(false) (as Write does) to keep & < > literal.
func (r Record) MarshalJSON() ([]byte, error) {
	values := map[string]any{
		KeyFolderInfo:           r.FolderInfo,
		KeyFilesWithPreviews:    nonNilFiles(r.FilesWithPreviews),
		KeyFilesWithoutPreviews: nonNilFiles(r.FilesWithoutPreviews),
		KeyOtherImages:          nonNilImages(r.OtherImages),
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeKey := func(key string, raw []byte) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		name, err := marshalPlain(key)
		if err != nil {
			return err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(raw)
		return nil
	}

	for _, key := range coreKeys {
		raw, err := marshalPlain(values[key])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		if err := writeKey(key, raw); err != nil {
			return nil, err
		}
	}

	extraKeys := make([]string, 0, len(r.Extra))
	for key := range r.Extra {
		if isCoreKey(key) {
			continue
		}
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		raw := r.Extra[key]
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		if err := writeKey(key, raw); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the core keys and keeps the rest in Extra. A core key
// with the wrong shape is an error.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("record is not an object")
	}

	var out Record
	if v, ok := raw[KeyFolderInfo]; ok {
		if err := json.Unmarshal(v, &out.FolderInfo); err != nil {
			return fmt.Errorf("decode %s: %w", KeyFolderInfo, err)
		}
	}
	if v, ok := raw[KeyFilesWithPreviews]; ok {
		if err := json.Unmarshal(v, &out.FilesWithPreviews); err != nil {
			return fmt.Errorf("decode %s: %w", KeyFilesWithPreviews, err)
		}
	}
	if v, ok := raw[KeyFilesWithoutPreviews]; ok {
		if err := json.Unmarshal(v, &out.FilesWithoutPreviews); err != nil {
			return fmt.Errorf("decode %s: %w", KeyFilesWithoutPreviews, err)
		}
	}
	if v, ok := raw[KeyOtherImages]; ok {
		if err := json.Unmarshal(v, &out.OtherImages); err != nil {
			return fmt.Errorf("decode %s: %w", KeyOtherImages, err)
		}
	}
	for key, v := range raw {
		if isCoreKey(key) {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[key] = append(json.RawMessage(nil), v...)
	}
	*r = out
	return nil
}

func isCoreKey(key string) bool {
	for _, k := range coreKeys {
		if k == key {
			return true
		}
	}
	return false
}

func nonNilFiles(in []FileEntry) []FileEntry {
	if in == nil {
		return []FileEntry{}
	}
	return in
}

func nonNilImages(in []ImageEntry) []ImageEntry {
	if in == nil {
		return []ImageEntry{}
	}
	return in
}

// marshalPlain encodes v without HTML escaping so filenames round-trip as
// written.
func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
