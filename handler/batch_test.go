package handler

import (
	"net/http"
	"testing"
)

func TestBatchList(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "travis_clerk@example.com")

	w := s.do(t, "GET", "/api/batches", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Batches []struct {
			ID       string `json:"id"`
			Progress int    `json:"progress"`
		} `json:"batches"`
	}
	decode(t, w, &resp)

	if len(resp.Batches) != 2 {
		t.Fatalf("Expected 2 batches, got %d", len(resp.Batches))
	}
	if resp.Batches[0].ID != "b1" || resp.Batches[1].ID != "b2" {
		t.Errorf("Expected newest first [b1 b2], got [%s %s]", resp.Batches[0].ID, resp.Batches[1].ID)
	}
	if resp.Batches[0].Progress != 100 {
		t.Errorf("Expected b1 progress 100, got %d", resp.Batches[0].Progress)
	}
}

func TestBatchGet(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "travis_clerk@example.com")

	tests := []struct {
		name           string
		id             string
		expectedStatus int
	}{
		{name: "own court", id: "b2", expectedStatus: http.StatusOK},
		{name: "other court", id: "b3", expectedStatus: http.StatusForbidden},
		{name: "missing", id: "b9", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, "GET", "/api/batches/"+tt.id, token, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}

	var resp struct {
		Motions []struct {
			ID string `json:"id"`
		} `json:"motions"`
	}
	decode(t, s.do(t, "GET", "/api/batches/b2", token, nil), &resp)
	if len(resp.Motions) != 2 {
		t.Errorf("Expected 2 motions in b2, got %d", len(resp.Motions))
	}
}
