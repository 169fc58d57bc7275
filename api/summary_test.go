package api

import (
	"net/http"
	"testing"

	"smritikosha/memory-api/model"
)

func TestSummarize(t *testing.T) {
	a := newTestAPI(t)
	userID, token := a.newTestUser(t)
	memoryID := a.newTestMemory(t, userID, "Kyoto")

	a.ai.chatResponse = "A golden week among the temples."

	w := a.do(t, http.MethodPost, "/api/memories/"+memoryID+"/summarize", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if got := decodeBody(t, w)["summary"]; got != "A golden week among the temples." {
		t.Errorf("unexpected summary %q", got)
	}
}

func TestSummarizeShortText(t *testing.T) {
	a := newTestAPI(t)
	userID, token := a.newTestUser(t)

	m := model.Memory{ID: "short-mem", UserID: userID, Title: "Terse", Description: "meh"}
	if err := a.DB.Create(&m).Error; err != nil {
		t.Fatal(err)
	}

	w := a.do(t, http.MethodPost, "/api/memories/short-mem/summarize", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	if msg := decodeBody(t, w)["error"]; msg != "Memory text is too short or missing." {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestSummarizeUnknownMemory(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.newTestUser(t)

	w := a.do(t, http.MethodPost, "/api/memories/nope/summarize", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestSummarySaveUpserts(t *testing.T) {
	a := newTestAPI(t)
	userID, token := a.newTestUser(t)
	memoryID := a.newTestMemory(t, userID, "Kyoto")

	w := a.do(t, http.MethodPost, "/api/memories/"+memoryID+"/summary", token, h{"summary": "first version"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodPost, "/api/memories/"+memoryID+"/summary", token, h{"summary": "second version"})
	if w.Code != http.StatusOK {
		t.Fatalf("second save failed with %d", w.Code)
	}

	var summaries []model.MemorySummary
	a.DB.Where("memory_id = ?", memoryID).Find(&summaries)

	if len(summaries) != 1 {
		t.Fatalf("expected exactly 1 summary row, got %d", len(summaries))
	}
	if summaries[0].Summary != "second version" {
		t.Errorf("summary not replaced, got %q", summaries[0].Summary)
	}
}

func TestSummarySaveForeignMemory(t *testing.T) {
	a := newTestAPI(t)
	ownerID, _ := a.newTestUser(t)
	memoryID := a.newTestMemory(t, ownerID, "Private")

	_, intruderToken := a.newTestUser(t)

	w := a.do(t, http.MethodPost, "/api/memories/"+memoryID+"/summary", intruderToken, h{"summary": "mine now"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestStylize(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.newTestUser(t)

	a.ai.imageURL = "https://img.example/ghibli.png"

	w := a.do(t, http.MethodPost, "/api/stylize", token, h{"imageUrl": "https://img.example/original.jpg"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if got := decodeBody(t, w)["imageUrl"]; got != "https://img.example/ghibli.png" {
		t.Errorf("unexpected image URL %q", got)
	}

	w = a.do(t, http.MethodPost, "/api/stylize", token, h{"imageUrl": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing imageUrl should 400, got %d", w.Code)
	}
}
