package lrsynclib

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	photoslibrary "github.com/nekr0z/gphotoslibrary"
	"github.com/sirupsen/logrus"
)

const (
	albumPageSize = 50
	mediaPageSize = 100
)

// PhotosUploadURL is the raw byte upload endpoint. The generated
// Photos Library client does not cover it; tests point it elsewhere.
var PhotosUploadURL = "https://photoslibrary.googleapis.com/v1/uploads"

// NewPhotosService builds a Photos Library API client on top of an
// already authenticated http client.
func NewPhotosService(client *http.Client) (*photoslibrary.Service, error) {
	service, err := photoslibrary.New(client)
	if err != nil {
		return nil, fmt.Errorf("unable to create photoslibrary service: %v", err)
	}
	return service, nil
}

// FindAlbum pages through the album listing looking for a
// case-insensitive title match. Returns nil when no album matches.
func FindAlbum(service *photoslibrary.Service, albumName string) (*photoslibrary.Album, error) {
	pageToken := ""
	for {
		call := service.Albums.List().PageSize(albumPageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, wrapAPIError(err, "")
		}

		for _, album := range resp.Albums {
			if strings.EqualFold(album.Title, albumName) {
				return album, nil
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return nil, nil
		}
	}
}

// EnsureAlbum returns the album with the given name, creating it when
// it does not exist yet.
func EnsureAlbum(service *photoslibrary.Service, albumName string) (*photoslibrary.Album, error) {
	album, err := FindAlbum(service, albumName)
	if err != nil {
		return nil, err
	}
	if album != nil {
		return album, nil
	}

	log.WithFields(logrus.Fields{
		"album.name": albumName,
	}).Info("Album not found. Creating a new album...")

	created, err := service.Albums.Create(&photoslibrary.CreateAlbumRequest{
		Album: &photoslibrary.Album{Title: albumName},
	}).Do()
	if err != nil {
		return nil, wrapAPIError(err, "")
	}

	log.WithFields(logrus.Fields{
		"album.name": albumName,
		"album.id":   created.Id,
	}).Info("[OK] Album created.")
	return created, nil
}

// ListAlbumFilenames retrieves the filenames of all media items
// already present in an album, paging through the search.
func ListAlbumFilenames(service *photoslibrary.Service, albumID string) (map[string]bool, error) {
	names := make(map[string]bool)

	pageToken := ""
	for {
		resp, err := service.MediaItems.Search(&photoslibrary.SearchMediaItemsRequest{
			AlbumId:   albumID,
			PageSize:  mediaPageSize,
			PageToken: pageToken,
		}).Do()
		if err != nil {
			return nil, wrapAPIError(err, "")
		}

		for _, item := range resp.MediaItems {
			names[item.Filename] = true
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	log.WithFields(logrus.Fields{
		"album.id": albumID,
	}).Info("[OK] Loaded ", len(names), " media items from Google Photos.")
	return names, nil
}

// UploadToPhotos uploads every local file that is not yet present in
// the album, keyed by filename. Each upload is two steps: the bytes go
// to the raw upload endpoint, then the returned upload token is
// attached to the album. Returns the number of files uploaded.
func UploadToPhotos(client *http.Client, service *photoslibrary.Service, albumID, stagingDir string, files []string, present map[string]bool, abortOnError bool) (int, error) {
	uploaded := 0
	for _, name := range files {
		if present[name] {
			log.WithFields(logrus.Fields{
				"file.name": name,
				"album.id":  albumID,
			}).Info("[SKIP] Already uploaded.")
			continue
		}

		if err := uploadFileToPhotos(client, service, albumID, filepath.Join(stagingDir, name), name); err != nil {
			log.WithFields(logrus.Fields{
				"file.name": name,
				"album.id":  albumID,
				"error":     err,
			}).Error("[ERROR] Photos upload failed.")
			if abortOnError {
				return uploaded, err
			}
			continue
		}

		present[name] = true
		uploaded++
		log.WithFields(logrus.Fields{
			"file.name": name,
			"album.id":  albumID,
		}).Info("[OK] Uploaded to Google Photos.")
	}
	return uploaded, nil
}

func uploadFileToPhotos(client *http.Client, service *photoslibrary.Service, albumID, path, name string) error {
	token, err := uploadPhotoBytes(client, path, name)
	if err != nil {
		return err
	}

	_, err = service.MediaItems.BatchCreate(&photoslibrary.BatchCreateMediaItemsRequest{
		AlbumId: albumID,
		NewMediaItems: []*photoslibrary.NewMediaItem{
			{SimpleMediaItem: &photoslibrary.SimpleMediaItem{UploadToken: token}},
		},
	}).Do()
	if err != nil {
		return wrapAPIError(err, name)
	}
	return nil
}

// uploadPhotoBytes posts the file body to the raw upload endpoint and
// returns the upload token from the response body.
func uploadPhotoBytes(client *http.Client, path, name string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &IOError{Path: path, Err: err}
	}
	defer f.Close()

	req, err := http.NewRequest("POST", PhotosUploadURL, f)
	if err != nil {
		return "", &UploadError{Filename: name, Err: err}
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Goog-Upload-Content-Type", contentTypeFor(name))
	req.Header.Set("X-Goog-Upload-Protocol", "raw")

	resp, err := client.Do(req)
	if err != nil {
		return "", &UploadError{Filename: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &UploadError{Filename: name, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UploadError{Filename: name, Err: err}
	}
	return string(body), nil
}

func contentTypeFor(name string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "image/jpeg"
}
