package googledrive

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"
	"time"
)

// FS returns a read-only fs.FS rooted at the folder with the given
// identifier. Opened files hold their full content in memory, so the adapter
// suits configuration-sized files, not bulk data.
func (d *Drive) FS(rootID ID) fs.FS {
	return &driveFS{drive: d, rootID: rootID}
}

type driveFS struct {
	drive  *Drive
	rootID ID
}

var _ fs.FS = (*driveFS)(nil)

// Open resolves name segment by segment from the root folder. Folders open
// as fs.ReadDirFile, regular files as fs.File. Google-apps documents have no
// downloadable media and open with an error wrapping ErrNotReadable.
func (fsys *driveFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	currentID := fsys.rootID
	info := FileInfo{Name: ".", ID: currentID, Mime: mimeTypeFolder}
	if name != "." {
		for _, p := range strings.Split(name, "/") {
			f, found, err := fsys.drive.findChild(currentID, p, fileInfoFields)
			if err != nil {
				return nil, &fs.PathError{Op: "open", Path: name, Err: err}
			}
			if !found {
				return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
			}
			info = newFileInfo(f)
			currentID = info.ID
		}
	}

	if info.IsFolder() {
		children, err := fsys.drive.List(currentID, "", fileInfoFields)
		if err != nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}
		entries := make([]fs.DirEntry, 0, len(children))
		for _, c := range children {
			entries = append(entries, &DriveDirEntry{info: newFileInfo(c)})
		}
		return &DriveDir{info: info, entries: entries}, nil
	}

	if info.IsAppFile() {
		return nil, &fs.PathError{
			Op:   "open",
			Path: name,
			Err:  fmt.Errorf("google-apps file has no media: %w", ErrNotReadable),
		}
	}
	data, err := fsys.drive.ReadFile(info.ID)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &DriveFile{info: info, content: bytes.NewReader(data)}, nil
}

// DriveFile implements fs.File for a regular Google Drive file.
type DriveFile struct {
	info    FileInfo
	content *bytes.Reader
}

// Verify interface implementation at compile time.
var _ fs.File = (*DriveFile)(nil)

// Stat returns the file info.
func (f *DriveFile) Stat() (fs.FileInfo, error) {
	return &DriveFileInfo{info: f.info}, nil
}

// Read reads from the in-memory file content.
func (f *DriveFile) Read(b []byte) (int, error) {
	return f.content.Read(b)
}

// Close closes the file.
func (f *DriveFile) Close() error {
	return nil
}

// DriveDir implements fs.ReadDirFile for a Google Drive folder.
// DriveDir's ReadDir method is protected by a mutex for concurrent use.
type DriveDir struct {
	info    FileInfo
	entries []fs.DirEntry
	offset  int
	mu      sync.Mutex
}

// Verify interface implementation at compile time.
var _ fs.ReadDirFile = (*DriveDir)(nil)

// Stat returns the folder info.
func (d *DriveDir) Stat() (fs.FileInfo, error) {
	return &DriveFileInfo{info: d.info}, nil
}

// Read returns an error because folders cannot be read.
func (d *DriveDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.info.Name, Err: fs.ErrInvalid}
}

// Close closes the folder.
func (d *DriveDir) Close() error {
	return nil
}

// ReadDir reads the folder entries.
func (d *DriveDir) ReadDir(n int) ([]fs.DirEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n <= 0 {
		entries := d.entries[d.offset:]
		d.offset = len(d.entries)
		return entries, nil
	}

	if d.offset >= len(d.entries) {
		return nil, io.EOF
	}

	end := d.offset + n
	if end > len(d.entries) {
		end = len(d.entries)
	}
	entries := d.entries[d.offset:end]
	d.offset = end
	return entries, nil
}

// DriveDirEntry implements fs.DirEntry for a Google Drive file or folder.
type DriveDirEntry struct {
	info FileInfo
}

// Verify interface implementation at compile time.
var _ fs.DirEntry = (*DriveDirEntry)(nil)

// Name returns the name of the entry.
func (e *DriveDirEntry) Name() string {
	return e.info.Name
}

// IsDir reports whether the entry is a folder.
func (e *DriveDirEntry) IsDir() bool {
	return e.info.IsFolder()
}

// Type returns the file mode bits.
func (e *DriveDirEntry) Type() fs.FileMode {
	if e.IsDir() {
		return fs.ModeDir
	}
	return 0
}

// Info returns the file info.
func (e *DriveDirEntry) Info() (fs.FileInfo, error) {
	return &DriveFileInfo{info: e.info}, nil
}

// DriveFileInfo implements fs.FileInfo for a Google Drive file or folder.
type DriveFileInfo struct {
	info FileInfo
}

// Verify interface implementation at compile time.
var _ fs.FileInfo = (*DriveFileInfo)(nil)

// Name returns the base name of the file.
func (fi *DriveFileInfo) Name() string {
	return fi.info.Name
}

// Size returns the size of the file in bytes.
func (fi *DriveFileInfo) Size() int64 {
	return fi.info.Size
}

// Mode returns the file mode bits.
func (fi *DriveFileInfo) Mode() fs.FileMode {
	if fi.IsDir() {
		return fs.ModeDir | 0555
	}
	return 0444
}

// ModTime returns the modification time.
func (fi *DriveFileInfo) ModTime() time.Time {
	return fi.info.ModTime
}

// IsDir reports whether the file is a folder.
func (fi *DriveFileInfo) IsDir() bool {
	return fi.info.IsFolder()
}

// Sys returns nil.
func (fi *DriveFileInfo) Sys() any {
	return nil
}
