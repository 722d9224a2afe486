package googledrive

import (
	"strings"
	"time"

	"google.golang.org/api/drive/v3"
)

const (
	mimeTypeFolder          = "application/vnd.google-apps.folder"
	mimeTypePrefixGoogleApp = "application/vnd.google-apps."
)

// FileInfo describes a file or folder stored in Google Drive.
type FileInfo struct {
	Name    string
	ID      ID
	Size    int64
	Mime    string
	ModTime time.Time
}

func (i FileInfo) IsFolder() bool {
	return i.Mime == mimeTypeFolder
}

func (i FileInfo) IsAppFile() bool {
	return strings.HasPrefix(i.Mime, mimeTypePrefixGoogleApp)
}

func newFileInfo(f *drive.File) FileInfo {
	modTime, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	return FileInfo{
		Name:    f.Name,
		ID:      ID(f.Id),
		Size:    f.Size,
		Mime:    f.MimeType,
		ModTime: modTime,
	}
}
