package classify

import "strings"

// FileType is the coarse category a relayed file is filed under.
type FileType string

const (
	TypeImage FileType = "image"
	TypeVideo FileType = "video"
	TypePDF   FileType = "pdf"
	TypeWord  FileType = "word"
	TypeExcel FileType = "excel"
	TypeOther FileType = "other"
)

var extensionTypes = map[string]FileType{
	"jpg": TypeImage, "jpeg": TypeImage, "png": TypeImage, "gif": TypeImage, "webp": TypeImage,
	"mp4": TypeVideo, "mov": TypeVideo, "avi": TypeVideo, "webm": TypeVideo,
	"pdf": TypePDF,
	"doc": TypeWord, "docx": TypeWord,
	"xls": TypeExcel, "xlsx": TypeExcel,
}

// Detect maps a filename and MIME type to a category. The filename
// extension wins; the MIME type is only consulted when the extension is
// missing or unknown.
func Detect(fileName, mimeType string) FileType {
	if t, ok := extensionTypes[extension(fileName)]; ok {
		return t
	}

	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return TypeImage
	case strings.HasPrefix(mimeType, "video/"):
		return TypeVideo
	case mimeType == "application/pdf":
		return TypePDF
	case strings.Contains(mimeType, "word") || strings.Contains(mimeType, "document"):
		return TypeWord
	case strings.Contains(mimeType, "excel") || strings.Contains(mimeType, "spreadsheet"):
		return TypeExcel
	default:
		return TypeOther
	}
}

// Valid reports whether raw is one of the six categories.
func Valid(raw string) bool {
	switch FileType(raw) {
	case TypeImage, TypeVideo, TypePDF, TypeWord, TypeExcel, TypeOther:
		return true
	}
	return false
}

func extension(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 || idx == len(fileName)-1 {
		return ""
	}
	return strings.ToLower(fileName[idx+1:])
}
