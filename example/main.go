package main

import (
	"context"
	"fmt"
	"log"

	googledrive "github.com/skitschy/googledrive-go"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

func main() {
	ctx := context.Background()

	client, err := google.DefaultClient(ctx, drive.DriveScope)
	if err != nil {
		log.Fatal(err)
	}

	gdrive, err := googledrive.New(ctx, googledrive.WithHTTPClient(client))
	if err != nil {
		log.Fatal(err)
	}
	defer gdrive.Close()

	// Create a folder structure.
	dir, err := gdrive.MkdirAll(googledrive.Root, "/reports/2026")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Created folder: %s (ID: %s)\n", dir.Name, dir.ID)

	// Write a file by path; a second Write to the same name overwrites it
	// in place and keeps the identifier.
	id, err := gdrive.Write(googledrive.Path("/reports/2026"), "summary.txt",
		[]byte("Hello, Google Drive!"), "text/plain")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote file: %s\n", id)

	// Read it back.
	content, found, err := gdrive.Read(googledrive.Path("/reports/2026"), "summary.txt")
	if err != nil {
		log.Fatal(err)
	}
	if found {
		fmt.Println(string(content))
	}

	// List the folder contents.
	files, err := gdrive.List(dir.ID, "", "files(id,name,mimeType)")
	if err != nil {
		log.Fatal(err)
	}
	for _, f := range files {
		fmt.Printf("%s (ID: %s)\n", f.Name, f.Id)
	}

	// Stream a query lazily; pages are fetched as the sequence is consumed.
	for f, err := range gdrive.Files(googledrive.Root, "name contains 'summary'", "files(id,name)") {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("match: %s (ID: %s)\n", f.Name, f.Id)
	}

	// Clean up.
	if err := gdrive.DeleteFile(id); err != nil {
		log.Fatal(err)
	}
}
