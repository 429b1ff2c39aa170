package lrsynclib

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const drivePageSize = 100

// NewDriveService builds a Drive API client on top of an already
// authenticated http client.
func NewDriveService(client *http.Client) (*drive.Service, error) {
	service, err := drive.NewService(context.Background(), option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %v", err)
	}
	return service, nil
}

// ListDriveFilenames retrieves the names of all files already present
// in a Drive folder, paging through the listing.
func ListDriveFilenames(service *drive.Service, folderID string) (map[string]bool, error) {
	names := make(map[string]bool)
	query := fmt.Sprintf("'%s' in parents and trashed = false", folderID)

	pageToken := ""
	for {
		call := service.Files.List().Q(query).PageSize(drivePageSize).Fields("nextPageToken, files(id, name)")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, wrapAPIError(err, "")
		}

		for _, file := range resp.Files {
			names[file.Name] = true
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	log.WithFields(logrus.Fields{
		"folder.id": folderID,
	}).Info("[OK] Loaded ", len(names), " files from Google Drive.")
	return names, nil
}

// UploadToDrive uploads every local file that is not yet present in
// the folder, keyed by filename. Returns the number of files uploaded.
func UploadToDrive(service *drive.Service, folderID, stagingDir string, files []string, present map[string]bool, abortOnError bool) (int, error) {
	uploaded := 0
	for _, name := range files {
		if present[name] {
			log.WithFields(logrus.Fields{
				"file.name": name,
				"folder.id": folderID,
			}).Info("[SKIP] Already uploaded.")
			continue
		}

		if err := uploadFileToDrive(service, folderID, filepath.Join(stagingDir, name), name); err != nil {
			log.WithFields(logrus.Fields{
				"file.name": name,
				"folder.id": folderID,
				"error":     err,
			}).Error("[ERROR] Drive upload failed.")
			if abortOnError {
				return uploaded, err
			}
			continue
		}

		present[name] = true
		uploaded++
		log.WithFields(logrus.Fields{
			"file.name": name,
			"folder.id": folderID,
		}).Info("[OK] Uploaded to Google Drive.")
	}
	return uploaded, nil
}

func uploadFileToDrive(service *drive.Service, folderID, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	defer f.Close()

	metadata := &drive.File{
		Name:    name,
		Parents: []string{folderID},
	}
	if _, err := service.Files.Create(metadata).Media(f).Do(); err != nil {
		return wrapAPIError(err, name)
	}
	return nil
}
