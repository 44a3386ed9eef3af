package textutil

import "strings"

// imageExtensions is the preview allow-list. Anything else in a directory is
// treated as a content file.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".jpe":  true,
	".jfif": true,
	".png":  true,
	".apng": true,
	".gif":  true,
	".bmp":  true,
	".dib":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".svg":  true,
	".svgz": true,
	".ico":  true,
	".avif": true,
	".heic": true,
	".heif": true,
}

// IsImageExt reports whether ext (with leading dot, any case) is a preview
// image extension.
func IsImageExt(ext string) bool {
	return imageExtensions[strings.ToLower(strings.TrimSpace(ext))]
}

// IsImageFile reports whether the filename carries an image extension.
func IsImageFile(filename string) bool {
	_, ext := SplitExt(filename)
	return IsImageExt(ext)
}
