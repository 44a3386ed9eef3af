package index

import (
	"encoding/json"
	"fmt"
	"time"

	"pairdex/internal/pairing"
)

// ScanDateLayout is the local-time layout of folder_info.scan_date.
const ScanDateLayout = "2006-01-02 15:04:05"

// Stats carries the directory totals gathered while listing.
type Stats struct {
	Path           string
	TotalSizeBytes int64
	FileCount      int
	SubdirCount    int
	ScanTime       time.Time
}

// ContentFile is a non-image file from the listing. Basename is the name
// without its extension and must match the content passed to the engine.
type ContentFile struct {
	Name      string
	Basename  string
	Path      string
	SizeBytes int64
}

// Build assembles a fresh record from a pairing result. Core keys are always
// rebuilt; non-core keys of previous are copied forward.
func Build(stats Stats, contents []ContentFile, result pairing.Result, previous *Record) Record {
	byBase := make(map[string][]ContentFile, len(contents))
	for _, c := range contents {
		byBase[c.Basename] = append(byBase[c.Basename], c)
	}

	rec := Record{
		FolderInfo: FolderInfo{
			Path:              stats.Path,
			TotalSizeBytes:    stats.TotalSizeBytes,
			TotalSizeReadable: FormatSize(stats.TotalSizeBytes),
			FileCount:         stats.FileCount,
			SubdirCount:       stats.SubdirCount,
			ArchiveCount:      stats.FileCount,
			ScanDate:          stats.ScanTime.Local().Format(ScanDateLayout),
		},
		FilesWithPreviews:    []FileEntry{},
		FilesWithoutPreviews: []FileEntry{},
		OtherImages:          make([]ImageEntry, 0, len(result.Unmatched)),
	}

	for _, pair := range result.Pairs {
		file := ContentFile{Name: pair.Content, Basename: pair.Content}
		if queue := byBase[pair.Content]; len(queue) > 0 {
			file = queue[0]
			byBase[pair.Content] = queue[1:]
		}
		entry := FileEntry{
			Name:         file.Name,
			PathAbsolute: file.Path,
			SizeBytes:    file.SizeBytes,
			SizeReadable: FormatSize(file.SizeBytes),
		}
		if pair.Matched() {
			entry.PreviewFound = true
			entry.PreviewName = pair.Preview.Name
			entry.PreviewPathAbsolute = pair.Preview.Path
			entry.MatchMethod = string(pair.Method)
			entry.MatchScore = pair.Score
			rec.FilesWithPreviews = append(rec.FilesWithPreviews, entry)
			continue
		}
		rec.FilesWithoutPreviews = append(rec.FilesWithoutPreviews, entry)
	}

	for _, cand := range result.Unmatched {
		rec.OtherImages = append(rec.OtherImages, ImageEntry{
			Name:         cand.Name,
			PathAbsolute: cand.Path,
			SizeBytes:    cand.SizeBytes,
			SizeReadable: FormatSize(cand.SizeBytes),
		})
	}

	if previous != nil && len(previous.Extra) > 0 {
		rec.Extra = make(map[string]json.RawMessage, len(previous.Extra))
		for key, raw := range previous.Extra {
			if isCoreKey(key) {
				continue
			}
			rec.Extra[key] = append(json.RawMessage(nil), raw...)
		}
	}
	return rec
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatSize renders a byte count with two decimals in 1024 steps.
// Zero is "0 B".
func FormatSize(size int64) string {
	if size == 0 {
		return "0 B"
	}
	value := float64(size)
	i := 0
	for value >= 1024 && i < len(sizeUnits)-1 {
		value /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", value, sizeUnits[i])
}
