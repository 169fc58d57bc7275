package api

import (
	"fmt"
	"net/http"
	"testing"

	"smritikosha/memory-api/ai"
)

func TestReelPreview(t *testing.T) {
	a := newTestAPI(t)
	userID, token := a.newTestUser(t)
	memoryID := a.newTestMemory(t, userID, "Kyoto")
	imageID := a.newTestImage(t, userID, memoryID)

	a.ai.chatResponse = fmt.Sprintf(`{
		"title": "Temple Days",
		"theme": "warm",
		"mood": "calm",
		"musicStyle": "lofi",
		"visualFlow": [{"imageId": %q, "caption": "morning light", "duration": 2.5, "effect": "fade"}]
	}`, imageID)

	w := a.do(t, http.MethodPost, "/api/memories/"+memoryID+"/reel", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["title"] != "Temple Days" || body["theme"] != "warm" {
		t.Errorf("unexpected preview: %v", body)
	}

	flow, _ := body["visualFlow"].([]any)
	if len(flow) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(flow))
	}

	frame := flow[0].(map[string]any)
	if frame["imageId"] != imageID {
		t.Errorf("unexpected frame image id %v", frame["imageId"])
	}

	// The signed URL wins over whatever the generation proposed
	wantURL := "https://signed.example/memory-images/" + userID + "/123_photo.jpg"
	if frame["imageUrl"] != wantURL {
		t.Errorf("imageUrl = %q, want %q", frame["imageUrl"], wantURL)
	}
}

func TestReelPreviewNoImages(t *testing.T) {
	a := newTestAPI(t)
	userID, token := a.newTestUser(t)
	memoryID := a.newTestMemory(t, userID, "Empty")

	w := a.do(t, http.MethodPost, "/api/memories/"+memoryID+"/reel", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("memory without images should 400, got %d", w.Code)
	}
}

func TestReelPreviewUnknownMemory(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.newTestUser(t)

	w := a.do(t, http.MethodPost, "/api/memories/nope/reel", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestReelPreviewBadGeneration(t *testing.T) {
	a := newTestAPI(t)
	userID, token := a.newTestUser(t)
	memoryID := a.newTestMemory(t, userID, "Kyoto")
	a.newTestImage(t, userID, memoryID)

	a.ai.chatResponse = "I'm sorry, I can't produce JSON today."

	w := a.do(t, http.MethodPost, "/api/memories/"+memoryID+"/reel", token, nil)
	if w.Code != http.StatusBadGateway {
		t.Errorf("schema violation should 502, got %d", w.Code)
	}
}

func TestReelPreviewUpstreamFailure(t *testing.T) {
	a := newTestAPI(t)
	userID, token := a.newTestUser(t)
	memoryID := a.newTestMemory(t, userID, "Kyoto")
	a.newTestImage(t, userID, memoryID)

	a.ai.chatErr = &ai.UpstreamError{Status: http.StatusTooManyRequests, Message: "rate limited"}

	w := a.do(t, http.MethodPost, "/api/memories/"+memoryID+"/reel", token, nil)
	if w.Code != http.StatusBadGateway {
		t.Errorf("upstream failure should 502, got %d", w.Code)
	}
}
