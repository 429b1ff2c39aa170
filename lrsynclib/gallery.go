package lrsynclib

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// Asset describes one remote image in a Lightroom gallery.
type Asset struct {
	RemoteID  string
	Filename  string
	SourceURL string
}

// Gallery listing responses are prefixed with an anti-hijacking guard
// that has to be stripped before the json can be decoded.
var listingGuard = []byte("while (1) {}")

type galleryListing struct {
	Resources []struct {
		Asset struct {
			ID      string `json:"id"`
			Payload struct {
				ImportSource struct {
					FileName string `json:"fileName"`
				} `json:"importSource"`
			} `json:"payload"`
		} `json:"asset"`
	} `json:"resources"`
}

// GenerateAssetListURL rewrites a public gallery URL of the form
// https://lightroom.adobe.com/gallery/[gallery_id]/albums/[album_id]/assets
// onto the download host's asset listing endpoint.
func GenerateAssetListURL(galleryURL string) (string, error) {
	parts := strings.Split(galleryURL, "/")
	if len(parts) >= 8 && parts[2] == "lightroom.adobe.com" && parts[3] == "gallery" {
		galleryID := parts[4]
		albumID := parts[6]
		return fmt.Sprintf("https://dl.lightroom.adobe.com/spaces/%s/albums/%s/assets", galleryID, albumID), nil
	}

	return "", &FetchError{URL: galleryURL, Err: errors.New("invalid gallery URL format")}
}

// ListAssets retrieves the gallery listing and decodes it into asset
// descriptors. The listing endpoint answers one page per call; entries
// without a filename cannot be sync-keyed and are skipped.
func ListAssets(client *http.Client, listURL string) ([]Asset, error) {
	resp, err := client.Get(listURL)
	if err != nil {
		return nil, &FetchError{URL: listURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: listURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: listURL, Err: err}
	}
	body = bytes.TrimPrefix(body, listingGuard)

	var listing galleryListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, &FetchError{URL: listURL, Err: err}
	}

	var assets []Asset
	for _, res := range listing.Resources {
		if res.Asset.Payload.ImportSource.FileName == "" {
			log.WithFields(logrus.Fields{
				"asset.id": res.Asset.ID,
			}).Warn("[SKIP] Asset has no filename.")
			continue
		}
		assets = append(assets, Asset{
			RemoteID:  res.Asset.ID,
			Filename:  res.Asset.Payload.ImportSource.FileName,
			SourceURL: assetSourceURL(listURL, res.Asset.ID),
		})
	}
	return assets, nil
}

// assetSourceURL builds the fullsize download URL for a single asset,
// scoped under the same album as the listing it came from.
func assetSourceURL(listURL, assetID string) string {
	base := strings.TrimSuffix(listURL, "/assets")
	return fmt.Sprintf("%s/assets/%s?fullsize=true", base, assetID)
}
