package googledrive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const (
	fileFields     = "id,name,mimeType,size,modifiedTime"
	fileIDFields   = "files(id)"
	fileInfoFields = "files(id,name,mimeType,size,modifiedTime)"
)

// ReadFile downloads the full content of the file with the given identifier.
func (d *Drive) ReadFile(fileID ID) (data []byte, err error) {
	var resp *http.Response
	err = d.execute("files.get", func() error {
		r, e := d.files.Get(string(fileID)).Download()
		if e != nil {
			return e
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, newDriveError("failed to download file", err)
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			closeErr = newIOError("failed to close file body", closeErr)
		}
		err = errors.Join(err, closeErr)
	}()

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, newIOError("failed to read file body", err)
	}
	return data, nil
}

// CreateFile creates a new file named name under parentID with the given
// content and MIME type and returns the identifier of the created file.
func (d *Drive) CreateFile(parentID ID, name string, content []byte, mimeType string) (ID, error) {
	meta := &drive.File{Name: name, Parents: []string{string(parentID)}}
	var created *drive.File
	// The call is rebuilt per attempt so a retry never replays a drained
	// media reader.
	err := d.execute("files.create", func() error {
		var e error
		created, e = d.files.Create(meta).
			Media(bytes.NewReader(content), googleapi.ContentType(mimeType)).
			Fields("id").
			Do()
		return e
	})
	if err != nil {
		return "", newDriveError("failed to create file", err)
	}
	return ID(created.Id), nil
}

// UpdateFile overwrites the content of the file with the given identifier in
// place; the identifier stays the same.
func (d *Drive) UpdateFile(fileID ID, content []byte, mimeType string) error {
	err := d.execute("files.update", func() error {
		_, e := d.files.Update(string(fileID), &drive.File{}).
			Media(bytes.NewReader(content), googleapi.ContentType(mimeType)).
			Do()
		return e
	})
	if err != nil {
		return newDriveError("failed to update file", err)
	}
	return nil
}

// DeleteFile deletes the file with the given identifier unconditionally.
// There is no existence check; deleting an unknown identifier surfaces the
// remote error.
func (d *Drive) DeleteFile(fileID ID) error {
	err := d.execute("files.delete", func() error {
		return d.files.Delete(string(fileID)).Do()
	})
	if err != nil {
		return newDriveError("failed to delete file", err)
	}
	return nil
}

func (d *Drive) createFolder(parentID ID, name string) (*drive.File, error) {
	var created *drive.File
	err := d.execute("files.create", func() error {
		var e error
		created, e = d.files.Create(&drive.File{
			Name:     name,
			MimeType: mimeTypeFolder,
			Parents:  []string{string(parentID)},
		}).
			Fields(fileFields).
			Do()
		return e
	})
	if err != nil {
		return nil, newDriveError("failed to create folder", err)
	}
	return created, nil
}

func (d *Drive) findChildren(parentID ID, name, fields string) ([]*drive.File, error) {
	q := fmt.Sprintf("'%s' in parents and name='%s'", parentID, escapeQuery(name))
	var list *drive.FileList
	err := d.execute("files.list", func() error {
		var e error
		list, e = d.files.List().
			Q(q).
			Spaces("drive").
			Fields(googleapi.Field(fields)).
			Do()
		return e
	})
	if err != nil {
		return nil, newDriveError("failed to list files", err)
	}
	return list.Files, nil
}

func (d *Drive) findChild(parentID ID, name, fields string) (*drive.File, bool, error) {
	files, err := d.findChildren(parentID, name, fields)
	if err != nil || len(files) == 0 {
		return nil, false, err
	}
	return files[0], true, nil
}

// buildQuery combines the parent containment clause with a caller-supplied
// query, reproducing the Drive query dialect verbatim.
func buildQuery(parentID ID, query string) string {
	switch {
	case parentID != "" && query != "":
		return fmt.Sprintf("'%s' in parents and %s", parentID, query)
	case parentID != "":
		return fmt.Sprintf("'%s' in parents", parentID)
	default:
		return query
	}
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return s
}
