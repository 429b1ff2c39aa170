package lrsynclib

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogLevel will update the log level according to the json
// configuration file
func SetLogLevel(config *Config, log *logrus.Logger) {
	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		log.Level = logrus.InfoLevel
	} else {
		log.Level = level
	}
}

// Process runs the full sync: list the gallery, download what is
// missing locally, then upload what is missing from each configured
// destination.
// If a file already exists at a stage
//   --> it will be skipped
// If a file doesn't exist yet
//   --> it will be downloaded, then uploaded
func Process(config *Config, parentlog *logrus.Logger) error {
	if parentlog != nil {
		log = parentlog
	}

	SetLogLevel(config, log)

	if err := config.Validate(); err != nil {
		return err
	}

	listURL, err := GenerateAssetListURL(config.GalleryURL)
	if err != nil {
		return err
	}

	client := http.DefaultClient

	log.WithField("url", config.GalleryURL).Info("Retrieving asset listing from gallery...")
	assets, err := ListAssets(client, listURL)
	if err != nil {
		return err
	}
	log.Info("[OK] Listed ", len(assets), " assets.")

	fetched, err := DownloadAssets(client, assets, config.stagingDir(), config.AbortOnError)
	if err != nil {
		return err
	}
	log.Info("[OK] Downloaded ", fetched, " new files.")

	files, err := EligibleFiles(config.stagingDir(), config.allowedExtensions())
	if err != nil {
		return err
	}

	authed, err := NewOAuthClient(config, config.scopes()...)
	if err != nil {
		return err
	}

	if config.FolderID != "" {
		service, err := NewDriveService(authed)
		if err != nil {
			return err
		}

		present, err := ListDriveFilenames(service, config.FolderID)
		if err != nil {
			return err
		}

		uploaded, err := UploadToDrive(service, config.FolderID, config.stagingDir(), files, present, config.AbortOnError)
		if err != nil {
			return err
		}
		log.Info("[OK] Uploaded ", uploaded, " files to Google Drive.")
	}

	if config.AlbumName != "" {
		service, err := NewPhotosService(authed)
		if err != nil {
			return err
		}

		album, err := EnsureAlbum(service, config.AlbumName)
		if err != nil {
			return err
		}

		present, err := ListAlbumFilenames(service, album.Id)
		if err != nil {
			return err
		}

		uploaded, err := UploadToPhotos(authed, service, album.Id, config.stagingDir(), files, present, config.AbortOnError)
		if err != nil {
			return err
		}
		log.Info("[OK] Uploaded ", uploaded, " files to Google Photos.")
	}

	return nil
}
