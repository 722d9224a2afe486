package googledrive

import (
	"fmt"
)

// Root is the well-known identifier of the top-level folder of a drive.
const Root = ID("root")

// ID is an opaque identifier naming a file or folder in Google Drive.
type ID string

func (id ID) resolve(*Drive) (ID, error) {
	return id, nil
}

// Folder locates a parent folder: either an ID, used directly, or a Path of
// folder names resolved segment by segment from the drive root.
type Folder interface {
	resolve(d *Drive) (ID, error)
}

func (d *Drive) folderID(folder Folder) (ID, error) {
	if folder == nil {
		return "", nil
	}
	return folder.resolve(d)
}

func (d *Drive) requireFolderID(folder Folder) (ID, error) {
	if folder == nil {
		return "", fmt.Errorf("folder is required: %w", ErrInvalidPath)
	}
	return folder.resolve(d)
}

// ResolvePath walks path from rootID one segment at a time, resolving each
// folder name to the identifier of its first match. It fails with an error
// wrapping ErrNotFound as soon as a segment does not resolve, naming the
// segment and its parent.
func (d *Drive) ResolvePath(rootID ID, path Path) (ID, error) {
	parts, err := splitPath(string(path))
	if err != nil {
		return "", fmt.Errorf("path validation failed: %w", err)
	}
	currentID := rootID
	for _, p := range parts {
		id, found, err := d.ResolveID(currentID, p)
		if err != nil {
			return "", fmt.Errorf("failed to resolve '%s' in '%s': %w", p, currentID, err)
		}
		if !found {
			return "", fmt.Errorf("'%s' not found in '%s': %w", p, currentID, ErrNotFound)
		}
		currentID = id
	}
	return currentID, nil
}

// ResolveID looks up the child of parentID named name, requesting only the
// identifier field, and returns the identifier of the first match, or
// found=false when no child matches.
func (d *Drive) ResolveID(parentID ID, name string) (id ID, found bool, err error) {
	f, found, err := d.findChild(parentID, name, fileIDFields)
	if err != nil || !found {
		return "", false, err
	}
	return ID(f.Id), true, nil
}
