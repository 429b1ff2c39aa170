package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/christopher-hacker/lightroom-chrome-sync/lrsynclib"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

var (
	galleryURL   = flag.String("gallery_url", "", "The Adobe Lightroom gallery URL.")
	folderID     = flag.String("folder_id", "", "The ID of the Google Drive folder to upload to.")
	albumName    = flag.String("album_name", "", "The name of the Google Photos album to upload to.")
	configFile   = flag.String("config", "./lrsync.conf.json", "Path to the json configuration file.")
	abortOnError = flag.Bool("abort_on_error", false, "Stop the run on the first per-file failure.")
)

// main is the principal entry point
func main() {
	flag.Parse()

	var config lrsynclib.Config
	if _, err := os.Stat(*configFile); err == nil {
		config, err = lrsynclib.LoadConfiguration(*configFile)
		if err != nil {
			log.Fatal("Unable to load configuration")
		}
	}

	if *galleryURL != "" {
		config.GalleryURL = *galleryURL
	}
	if *folderID != "" {
		config.FolderID = *folderID
	}
	if *albumName != "" {
		config.AlbumName = *albumName
	}
	if *abortOnError {
		config.AbortOnError = true
	}

	// Neither the flags nor the config file provided anything to do.
	if config.GalleryURL == "" && config.FolderID == "" && config.AlbumName == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s --gallery_url URL [--folder_id ID] [--album_name NAME]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := lrsynclib.Process(&config, log); err != nil {
		log.Fatal(err)
	}

	log.Info("Done!")
}
