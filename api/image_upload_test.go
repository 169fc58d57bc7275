package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"smritikosha/memory-api/model"
)

// pngBytes is a tiny but sniffable PNG payload
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 16)...)

func (a *testAPI) uploadImage(t *testing.T, token, memoryID, fileName, contentType string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="`+fileName+`"`)
	hdr.Set("Content-Type", contentType)

	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)

	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/memories/"+memoryID+"/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func TestImageUpload(t *testing.T) {
	a := newTestAPI(t)
	userID, token := a.newTestUser(t)
	memoryID := a.newTestMemory(t, userID, "Kyoto")

	w := a.uploadImage(t, token, memoryID, "temple photo.png", "image/png", pngBytes, map[string]string{
		"location":     "Kyoto",
		"description":  "morning light on the gate",
		"tags":         "travel,autumn",
		"capture_date": "2024-11-02",
		"lat":          "35.0116",
		"lon":          "135.7681",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var img model.MemoryImage
	if err := a.DB.First(&img, "memory_id = ?", memoryID).Error; err != nil {
		t.Fatalf("image row missing: %v", err)
	}

	if !strings.HasPrefix(img.ImagePath, userID+"/") || !strings.HasSuffix(img.ImagePath, "_temple_photo.png") {
		t.Errorf("unexpected object key %q", img.ImagePath)
	}
	if img.Location != "Kyoto" || len(img.Tags) != 2 {
		t.Errorf("metadata not persisted: %+v", img)
	}
	if img.Lat == nil || img.Lon == nil || img.CaptureDate == nil {
		t.Error("coordinates and capture date should be set")
	}

	data, ok := a.store.get("memory-images", img.ImagePath)
	if !ok {
		t.Fatal("object missing from storage")
	}
	if !bytes.Equal(data, pngBytes) {
		t.Error("stored bytes don't match the upload")
	}
}

func TestImageUploadRejectsNonImage(t *testing.T) {
	a := newTestAPI(t)
	userID, token := a.newTestUser(t)
	memoryID := a.newTestMemory(t, userID, "Kyoto")

	// Declared as an image but the bytes are plain text
	w := a.uploadImage(t, token, memoryID, "fake.png", "image/png", []byte("definitely not a picture"), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	// Honest content type
	w = a.uploadImage(t, token, memoryID, "notes.txt", "text/plain", []byte("notes"), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var count int64
	a.DB.Model(model.MemoryImage{}).Where("memory_id = ?", memoryID).Count(&count)
	if count != 0 {
		t.Error("rejected uploads must not create rows")
	}
}

func TestImageUploadForeignMemory(t *testing.T) {
	a := newTestAPI(t)
	ownerID, _ := a.newTestUser(t)
	memoryID := a.newTestMemory(t, ownerID, "Private")

	_, intruderToken := a.newTestUser(t)

	w := a.uploadImage(t, intruderToken, memoryID, "p.png", "image/png", pngBytes, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
