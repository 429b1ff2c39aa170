package lrsynclib

import (
	"context"
	"encoding/gob"
	"fmt"
	"net/http"
	"os"

	photoslibrary "github.com/nekr0z/gphotoslibrary"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
)

const consoleSetupHint = "enable the Google Drive and Photos Library APIs at " +
	"https://console.developers.google.com/, create an OAuth client ID of type " +
	"'Desktop app' and save the downloaded json next to this program"

// scopes returns the OAuth scopes the configured destinations need.
func (c *Config) scopes() []string {
	var scopes []string
	if c.FolderID != "" {
		scopes = append(scopes, drive.DriveScope)
	}
	if c.AlbumName != "" {
		scopes = append(scopes, photoslibrary.PhotoslibraryScope)
	}
	return scopes
}

// NewOAuthClient builds an authenticated http client for the given
// scopes. A cached token is used when present, otherwise the user is
// taken through the interactive consent flow and the resulting token
// is persisted for the next run.
func NewOAuthClient(config *Config, scopes ...string) (*http.Client, error) {
	clientSecret, err := os.ReadFile(config.clientSecretFile())
	if err != nil {
		return nil, &AuthError{
			Reason: "unable to read client secret file (" + consoleSetupHint + ")",
			Err:    err,
		}
	}

	oauthConfig, err := google.ConfigFromJSON(clientSecret, scopes...)
	if err != nil {
		return nil, &AuthError{Reason: "unable to parse client secret file into config", Err: err}
	}

	cachePath := config.tokenCacheFile()
	token, err := tokenFromFile(cachePath)
	if err != nil {
		token, err = tokenFromWeb(oauthConfig)
		if err != nil {
			return nil, err
		}

		if err := saveToken(cachePath, token); err != nil {
			log.WithField("path", cachePath).Warn("Failed to cache oauth token. ", err.Error())
		}
	}

	return oauthConfig.Client(context.Background(), token), nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t := new(oauth2.Token)
	err = gob.NewDecoder(f).Decode(t)
	return t, err
}

func tokenFromWeb(config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Retrieve your authorization code using: %v\nCode: ", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, &AuthError{Reason: "unable to read authorization code", Err: err}
	}

	token, err := config.Exchange(context.Background(), code)
	if err != nil {
		return nil, &AuthError{Reason: "unable to retrieve token from web", Err: err}
	}

	return token, nil
}

func saveToken(file string, token *oauth2.Token) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	return gob.NewEncoder(f).Encode(token)
}
