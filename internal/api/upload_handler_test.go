package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"github.com/videoprep/videoprep-server/internal/catalog"
	"github.com/videoprep/videoprep-server/internal/ingest"
)

type fakeIngester struct {
	calls int
	got   ingest.Upload
	body  string
	err   error
}

func (f *fakeIngester) Ingest(ctx context.Context, up ingest.Upload) (*catalog.StoredClip, error) {
	f.calls++
	f.got = up
	data, _ := io.ReadAll(up.Body)
	f.body = string(data)
	if f.err != nil {
		return nil, f.err
	}
	return &catalog.StoredClip{
		ID:           "uuid-" + up.Filename,
		OriginalName: up.Filename,
		Path:         "/data/uploads/uuid-" + up.Filename,
		Metadata:     catalog.ClipMetadata{Duration: 12.5, FPS: 29.97, Width: 1280, Height: 720},
		Thumbnail:    "uuid-" + up.Filename + ".jpg",
	}, nil
}

func multipartBody(t *testing.T, field, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("note", "ignored"); err != nil {
		t.Fatal(err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func uploadRequest(t *testing.T, body io.Reader, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestUpload_HappyPath(t *testing.T) {
	env := newTestEnv(t)
	ing := &fakeIngester{}
	env.cfg.Ingester = ing

	body, ct := multipartBody(t, "video", "holiday.mp4", "video/mp4", "frames")
	rr := serve(t, env.cfg, uploadRequest(t, body, ct))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if ing.got.Filename != "holiday.mp4" || ing.got.ContentType != "video/mp4" || ing.body != "frames" {
		t.Errorf("ingester got %+v body %q", ing.got, ing.body)
	}

	var resp UploadResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "uuid-holiday.mp4" || resp.Name != "holiday.mp4" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Thumbnail == nil || *resp.Thumbnail != "/api/thumbnail/uuid-holiday.mp4.jpg" {
		t.Errorf("thumbnail = %v", resp.Thumbnail)
	}
	if resp.Resolution.Width != 1280 || resp.Resolution.Height != 720 || resp.FPS != 29.97 {
		t.Errorf("metadata = %+v", resp)
	}
}

func TestUpload_NullThumbnail(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Ingester = ingesterFunc(func(ctx context.Context, up ingest.Upload) (*catalog.StoredClip, error) {
		return &catalog.StoredClip{ID: "x", Metadata: catalog.DefaultMetadata()}, nil
	})

	body, ct := multipartBody(t, "video", "a.mp4", "video/mp4", "x")
	rr := serve(t, env.cfg, uploadRequest(t, body, ct))

	if !strings.Contains(rr.Body.String(), `"thumbnail":null`) {
		t.Errorf("body %s does not carry a null thumbnail", rr.Body.String())
	}
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"non video", fmt.Errorf("%w: got image/png", ingest.ErrInvalidContentType), http.StatusUnsupportedMediaType, "INVALID_CONTENT_TYPE"},
		{"too large", ingest.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"disk failure", fmt.Errorf("write upload: no space left"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.cfg.Ingester = &fakeIngester{err: tt.err}

			body, ct := multipartBody(t, "video", "a.mp4", "video/mp4", "x")
			rr := serve(t, env.cfg, uploadRequest(t, body, ct))

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if got := decodeJSONBody(t, rr)["code"]; got != tt.wantErr {
				t.Errorf("code = %v, want %s", got, tt.wantErr)
			}
		})
	}
}

func TestUpload_NoFile(t *testing.T) {
	env := newTestEnv(t)
	ing := &fakeIngester{}
	env.cfg.Ingester = ing

	body, ct := multipartBody(t, "other", "a.mp4", "video/mp4", "x")
	rr := serve(t, env.cfg, uploadRequest(t, body, ct))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if ing.calls != 0 {
		t.Error("ingester called without a video part")
	}
}

func TestUpload_NotMultipart(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Ingester = &fakeIngester{}

	rr := serve(t, env.cfg, uploadRequest(t, strings.NewReader("{}"), "application/json"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestUpload_RealIngesterRejectsBeforeWriting(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(t.TempDir(), "uploads")
	assigner := ingest.NewAssigner(dir, env.cfg.MaxUploadBytes, testLogger())
	env.cfg.Ingester = ingest.NewService(assigner, nil, nil, nil, t.TempDir(), testLogger())

	body, ct := multipartBody(t, "video", "pic.png", "image/png", "x")
	rr := serve(t, env.cfg, uploadRequest(t, body, ct))

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", rr.Code)
	}
	if matches, _ := filepath.Glob(filepath.Join(dir, "*")); len(matches) != 0 {
		t.Errorf("files written: %v", matches)
	}
}

type ingesterFunc func(ctx context.Context, up ingest.Upload) (*catalog.StoredClip, error)

func (f ingesterFunc) Ingest(ctx context.Context, up ingest.Upload) (*catalog.StoredClip, error) {
	return f(ctx, up)
}
