// Package googledrive is a small convenience layer over the Google Drive v3
// API. It maps slash paths onto Drive's flat parent/child model: a path is
// resolved into a file identifier by walking parent/child links one segment
// at a time, and every remote call runs through a bounded fixed-delay retry
// loop for transient failures.
//
//	gdrive, err := googledrive.New(ctx, googledrive.WithCredentials(creds))
//	if err != nil {
//		// ...
//	}
//	defer gdrive.Close()
//
//	content, found, err := gdrive.Read(googledrive.Path("/dirA/subdir1"), "filename")
//	id, err := gdrive.Write(googledrive.Path("/dirA/subdir2"), "filename.bak", content, "text/plain")
package googledrive

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Drive is a client for one Google Drive session. A Drive is owned by a
// single goroutine; operations are synchronous and blocking. Release the
// session with Close, typically via defer right after New.
type Drive struct {
	service *drive.Service
	files   *drive.FilesService
	retry   RetryPolicy
	log     zerolog.Logger

	// sleep waits between retry attempts. Tests replace it to avoid real
	// delays.
	sleep func(time.Duration)

	closer    func()
	closeOnce sync.Once
}

type config struct {
	clientOptions []option.ClientOption
	httpClient    *http.Client
	retry         RetryPolicy
	log           zerolog.Logger
}

// Option configures a Drive client.
type Option func(*config)

// WithCredentials forwards credential options (and any other client options)
// to the underlying Drive service construction. Credentials are opaque to
// this package.
func WithCredentials(opts ...option.ClientOption) Option {
	return func(c *config) {
		c.clientOptions = append(c.clientOptions, opts...)
	}
}

// WithHTTPClient supplies the HTTP client used for all remote calls. Close
// then shuts down the client's idle connections.
func WithHTTPClient(h *http.Client) Option {
	return func(c *config) {
		c.httpClient = h
	}
}

// WithRetryPolicy overrides the whole retry configuration.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *config) {
		c.retry = policy
	}
}

// WithMaxRetries overrides how many times a transient failure is retried
// after the first attempt.
func WithMaxRetries(n int) Option {
	return func(c *config) {
		c.retry.MaxRetries = n
	}
}

// WithRetryInterval overrides the fixed delay between retry attempts.
func WithRetryInterval(interval time.Duration) Option {
	return func(c *config) {
		c.retry.Interval = interval
	}
}

// WithLogger enables structured logging. Logging is disabled by default.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// New builds a Drive session. Service construction itself runs through the
// retry policy.
func New(ctx context.Context, opts ...Option) (*Drive, error) {
	cfg := config{retry: DefaultRetryPolicy, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.retry.MaxRetries < 0 {
		cfg.retry.MaxRetries = 0
	}
	if cfg.retry.Interval <= 0 {
		cfg.retry.Interval = DefaultRetryPolicy.Interval
	}

	d := &Drive{
		retry:  cfg.retry,
		log:    cfg.log,
		sleep:  time.Sleep,
		closer: func() {},
	}
	clientOptions := cfg.clientOptions
	if cfg.httpClient != nil {
		clientOptions = append(clientOptions, option.WithHTTPClient(cfg.httpClient))
		d.closer = cfg.httpClient.CloseIdleConnections
	}
	err := d.execute("drive.new", func() error {
		service, e := drive.NewService(ctx, clientOptions...)
		if e != nil {
			return e
		}
		d.service = service
		return nil
	})
	if err != nil {
		return nil, newDriveError("failed to build drive service", err)
	}
	d.files = d.service.Files
	return d, nil
}

// Close releases the session. It is safe on every exit path; only the first
// call has an effect.
func (d *Drive) Close() {
	d.closeOnce.Do(d.closer)
}

// Read resolves name under folder and downloads its content. A missing file
// under a valid folder is not an error: Read returns found=false.
func (d *Drive) Read(folder Folder, name string) (data []byte, found bool, err error) {
	parentID, err := d.requireFolderID(folder)
	if err != nil {
		return nil, false, err
	}
	fileID, found, err := d.ResolveID(parentID, name)
	if err != nil || !found {
		return nil, found, err
	}
	data, err = d.ReadFile(fileID)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Write stores content as name under folder. When the name already resolves,
// the existing file is overwritten in place and keeps its identifier;
// otherwise a new file is created. Write returns the identifier of the
// stored file.
func (d *Drive) Write(folder Folder, name string, content []byte, mimeType string) (ID, error) {
	parentID, err := d.requireFolderID(folder)
	if err != nil {
		return "", err
	}
	fileID, found, err := d.ResolveID(parentID, name)
	if err != nil {
		return "", err
	}
	if found {
		if err := d.UpdateFile(fileID, content, mimeType); err != nil {
			return "", err
		}
		return fileID, nil
	}
	return d.CreateFile(parentID, name, content, mimeType)
}

// Stat resolves name under folder and returns its metadata, or found=false
// when no child matches.
func (d *Drive) Stat(folder Folder, name string) (info FileInfo, found bool, err error) {
	parentID, err := d.requireFolderID(folder)
	if err != nil {
		return FileInfo{}, false, err
	}
	f, found, err := d.findChild(parentID, name, fileInfoFields)
	if err != nil || !found {
		return FileInfo{}, found, err
	}
	return newFileInfo(f), true, nil
}

// List materializes the files matching folder and query. folder may be nil
// to list without a parent clause; query is a free-form Drive query clause
// combined with the parent clause by 'and'. fields is a Drive field
// selection such as "files(id,name)"; when it omits nextPageToken, the token
// field is injected so pagination still works.
func (d *Drive) List(folder Folder, query, fields string) ([]*drive.File, error) {
	parentID, err := d.folderID(folder)
	if err != nil {
		return nil, err
	}
	var files []*drive.File
	for f, err := range d.Files(parentID, query, fields) {
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Files returns a lazy sequence of the files matching parentID and query,
// fetching one remote page each time the current page is exhausted. The
// sequence is finite and not restartable; stopping early simply stops
// fetching. A remote failure is yielded as the final element.
func (d *Drive) Files(parentID ID, query, fields string) iter.Seq2[*drive.File, error] {
	q := buildQuery(parentID, query)
	if fields != "" && !strings.Contains(fields, "nextPageToken") {
		fields = "nextPageToken," + fields
	}
	return func(yield func(*drive.File, error) bool) {
		pageToken := ""
		for {
			call := d.files.List().Spaces("drive")
			if q != "" {
				call = call.Q(q)
			}
			if fields != "" {
				call = call.Fields(googleapi.Field(fields))
			}
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			var page *drive.FileList
			err := d.execute("files.list", func() error {
				var e error
				page, e = call.Do()
				return e
			})
			if err != nil {
				yield(nil, newDriveError("failed to list files", err))
				return
			}
			for _, f := range page.Files {
				if !yield(f, nil) {
					return
				}
			}
			pageToken = page.NextPageToken
			if pageToken == "" {
				return
			}
		}
	}
}

// Mkdir creates a folder named name under parentID.
func (d *Drive) Mkdir(parentID ID, name string) (FileInfo, error) {
	f, err := d.createFolder(parentID, name)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to create folder: %w", err)
	}
	return newFileInfo(f), nil
}

// MkdirAll creates all folders along the given path that do not already
// exist and returns the info of the last one. An ambiguous segment, one
// matched by more than one existing child, fails with ErrAlreadyExists.
func (d *Drive) MkdirAll(rootID ID, path Path) (FileInfo, error) {
	parts, err := splitPath(string(path))
	if err != nil {
		return FileInfo{}, fmt.Errorf("path validation failed: %w", err)
	}
	currentID := rootID
	info := FileInfo{ID: currentID, Mime: mimeTypeFolder}
	for _, p := range parts {
		files, err := d.findChildren(currentID, p, fileInfoFields)
		if err != nil {
			return FileInfo{}, fmt.Errorf("failed to find folder '%s' in '%s': %w", p, currentID, err)
		}
		if len(files) > 1 {
			return FileInfo{}, fmt.Errorf("multiple children named '%s' in '%s': %w", p, currentID, ErrAlreadyExists)
		}
		var f *drive.File
		if len(files) == 1 {
			f = files[0]
		} else {
			f, err = d.createFolder(currentID, p)
			if err != nil {
				return FileInfo{}, fmt.Errorf("failed to create folder '%s' in '%s': %w", p, currentID, err)
			}
		}
		info = newFileInfo(f)
		currentID = info.ID
	}
	return info, nil
}
