package lrsynclib_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/christopher-hacker/lightroom-chrome-sync/lrsynclib"
)

// The drive client resolves every files call against its BasePath, so
// with the BasePath pointed here both the listing GET and the media
// upload POST arrive on /files.
func fakeDriveServer(t *testing.T, existing []string, uploads *int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			*uploads++
			fmt.Fprint(w, `{"id": "uploaded"}`)
			return
		}
		fmt.Fprint(w, `{"files": [`)
		for i, name := range existing {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"id": "file-%d", "name": %q}`, i, name)
		}
		fmt.Fprint(w, `]}`)
	})
	return httptest.NewServer(mux)
}

func TestListDriveFilenames(t *testing.T) {
	uploads := 0
	server := fakeDriveServer(t, []string{"a.jpg", "b.jpg"}, &uploads)
	defer server.Close()

	service, err := lrsynclib.NewDriveService(server.Client())
	if err != nil {
		t.Fatal(err)
	}
	service.BasePath = server.URL

	names, err := lrsynclib.ListDriveFilenames(service, "folder123")
	if err != nil {
		t.Fatal("Listing should not raise an error. Got ", err)
	}
	if len(names) != 2 || !names["a.jpg"] || !names["b.jpg"] {
		t.Error("Wrong folder inventory. Got ", names)
	}
}

func TestUploadToDriveSkipsPresent(t *testing.T) {
	uploads := 0
	server := fakeDriveServer(t, []string{"a.jpg"}, &uploads)
	defer server.Close()

	service, err := lrsynclib.NewDriveService(server.Client())
	if err != nil {
		t.Fatal(err)
	}
	service.BasePath = server.URL

	stagingDir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg"} {
		if err := os.WriteFile(filepath.Join(stagingDir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	present := map[string]bool{"a.jpg": true}
	uploaded, err := lrsynclib.UploadToDrive(service, "folder123", stagingDir, []string{"a.jpg", "b.jpg"}, present, false)
	if err != nil {
		t.Fatal("Upload should not raise an error. Got ", err)
	}
	if uploaded != 1 {
		t.Error("Expected 1 upload, got ", uploaded)
	}
	if uploads != 1 {
		t.Error("a.jpg was already in the folder, only b.jpg should have been sent. Requests: ", uploads)
	}
	if !present["b.jpg"] {
		t.Error("Uploaded file should have been added to the inventory")
	}

	// Second pass with the updated inventory uploads nothing.
	uploaded, err = lrsynclib.UploadToDrive(service, "folder123", stagingDir, []string{"a.jpg", "b.jpg"}, present, false)
	if err != nil {
		t.Fatal(err)
	}
	if uploaded != 0 || uploads != 1 {
		t.Error("Second pass should upload nothing. Got ", uploaded, " uploads, ", uploads, " requests")
	}
}

func TestListDriveFilenamesAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 403, "message": "forbidden"}}`, http.StatusForbidden)
	}))
	defer server.Close()

	service, err := lrsynclib.NewDriveService(server.Client())
	if err != nil {
		t.Fatal(err)
	}
	service.BasePath = server.URL

	_, err = lrsynclib.ListDriveFilenames(service, "folder123")
	var authErr *lrsynclib.AuthError
	if !errors.As(err, &authErr) {
		t.Error("403 from the API should be an AuthError. Got ", err)
	}
}

func TestUploadToDriveRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 500, "message": "boom"}}`, http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	service, err := lrsynclib.NewDriveService(server.Client())
	if err != nil {
		t.Fatal(err)
	}
	service.BasePath = server.URL

	stagingDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(stagingDir, "a.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err = lrsynclib.UploadToDrive(service, "folder123", stagingDir, []string{"a.jpg"}, map[string]bool{}, true)
	var upErr *lrsynclib.UploadError
	if !errors.As(err, &upErr) {
		t.Error("API rejection should be an UploadError. Got ", err)
	}
}
