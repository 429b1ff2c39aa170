package lrsynclib

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// DownloadAssets fetches every asset that is not already present in the
// staging directory, keyed by filename. Per-file failures are logged
// and skipped unless abortOnError is set. Returns the number of files
// actually fetched.
func DownloadAssets(client *http.Client, assets []Asset, stagingDir string, abortOnError bool) (int, error) {
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return 0, &IOError{Path: stagingDir, Err: err}
	}

	fetched := 0
	for _, asset := range assets {
		path := filepath.Join(stagingDir, asset.Filename)

		if _, err := os.Stat(path); err == nil {
			log.WithFields(logrus.Fields{
				"asset.filename": asset.Filename,
			}).Info("[SKIP] Already downloaded.")
			continue
		}

		if err := downloadAsset(client, asset, path); err != nil {
			log.WithFields(logrus.Fields{
				"asset.filename": asset.Filename,
				"asset.url":      asset.SourceURL,
				"error":          err,
			}).Error("[ERROR] Download failed.")
			if abortOnError {
				return fetched, err
			}
			continue
		}

		fetched++
		log.WithFields(logrus.Fields{
			"asset.filename": asset.Filename,
		}).Info("[OK] Downloaded.")
	}
	return fetched, nil
}

func downloadAsset(client *http.Client, asset Asset, path string) error {
	resp, err := client.Get(asset.SourceURL)
	if err != nil {
		return &DownloadError{Filename: asset.Filename, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &DownloadError{Filename: asset.Filename, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	file, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		// Leave no truncated file behind, it would be skipped on the
		// next run.
		os.Remove(path)
		return &IOError{Path: path, Err: err}
	}

	return nil
}

// EligibleFiles lists the staging directory entries whose extension is
// in the allowed set, in directory order.
func EligibleFiles(stagingDir string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		return nil, &IOError{Path: stagingDir, Err: err}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		isAllowedExt := false
		for _, ext := range extensions {
			if strings.ToLower(filepath.Ext(entry.Name())) == ext {
				isAllowedExt = true
			}
		}
		if !isAllowedExt {
			log.WithField("path", entry.Name()).Info("[SKIP] File not supported.")
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}
