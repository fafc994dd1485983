package handler

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/jakeh134/motionflow/service"
)

type testFile struct {
	name        string
	contentType string
	data        string
}

func (s *testServer) upload(t *testing.T, token string, files ...testFile) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("Failed to create part: %v", err)
		}
		part.Write([]byte(f.data))
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) waitForPhase(t *testing.T, token, id string, want service.IntakePhase) service.IntakeSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var snap service.IntakeSnapshot
	for time.Now().Before(deadline) {
		decode(t, s.do(t, "GET", "/api/uploads/"+id, token, nil), &snap)
		if snap.Phase == want {
			return snap
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Upload %s never reached %s, last phase %s", id, want, snap.Phase)
	return snap
}

func TestUploadReviewAndFinish(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "travis_clerk@example.com")

	w := s.upload(t, token,
		testFile{name: "continuance.pdf", contentType: "application/pdf", data: "%PDF-1.7"},
		testFile{name: "dismiss.pdf", contentType: "application/pdf", data: "%PDF-1.7"},
	)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	var snap service.IntakeSnapshot
	decode(t, w, &snap)
	if snap.Total != 2 {
		t.Fatalf("Expected 2 files, got %d", snap.Total)
	}

	snap = s.waitForPhase(t, token, snap.ID, service.PhaseReviewing)
	if len(snap.Documents) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(snap.Documents))
	}
	base := "/api/uploads/" + snap.ID

	if w := s.do(t, "POST", base+"/finish", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 before review, got %d", w.Code)
	}

	doc := snap.Documents[0].ID
	var link map[string]string
	decode(t, s.do(t, "GET", base+"/documents/"+doc+"/url", token, nil), &link)
	if !strings.HasPrefix(link["url"], "memory://") {
		t.Errorf("Expected a document link, got %q", link["url"])
	}

	if w := s.do(t, "POST", base+"/documents/"+doc+"/accept", token, nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200 accepting document, got %d", w.Code)
	}
	if w := s.do(t, "POST", base+"/documents/"+doc+"/reject", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 rejecting without reason, got %d", w.Code)
	}

	s.do(t, "POST", base+"/next", token, nil)
	decode(t, s.do(t, "POST", base+"/next", token, nil), &snap)
	if !snap.ReviewComplete {
		t.Fatal("Expected review complete after the last document")
	}

	w = s.do(t, "POST", base+"/finish", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &snap)
	if snap.Phase != service.PhaseComplete {
		t.Errorf("Expected phase complete, got %s", snap.Phase)
	}

	var view service.DashboardView
	decode(t, s.do(t, "GET", "/api/motions", token, nil), &view)
	if len(view.Motions) != 7 {
		t.Fatalf("Expected 7 motions after intake, got %d", len(view.Motions))
	}
	committed := view.Motions[5].ID
	if w := s.do(t, "GET", "/api/motions/"+committed+"/document", token, nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for committed document, got %d", w.Code)
	}

	// review is closed once committed
	if w := s.do(t, "POST", base+"/next", token, nil); w.Code != http.StatusConflict {
		t.Errorf("Expected status 409 after finish, got %d", w.Code)
	}
}

func TestUploadRejectsUnsupportedFiles(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "travis_clerk@example.com")

	w := s.upload(t, token, testFile{name: "notes.txt", contentType: "text/plain", data: "hello"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	req := httptest.NewRequest("POST", "/api/uploads", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without files, got %d", rec.Code)
	}
}

func TestUploadOtherCourtForbidden(t *testing.T) {
	s := newTestServer(t)
	travis := s.login(t, "travis_clerk@example.com")
	williamson := s.login(t, "williamson_clerk@example.com")

	w := s.upload(t, travis, testFile{name: "a.pdf", contentType: "application/pdf", data: "%PDF-1.7"})
	var snap service.IntakeSnapshot
	decode(t, w, &snap)

	if w := s.do(t, "GET", "/api/uploads/"+snap.ID, williamson, nil); w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
	if w := s.do(t, "GET", "/api/uploads/missing", travis, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
