package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProfileTransformation(t *testing.T) {
	if got, want := GridProfile.Transformation(), "c_fill,w_800,h_800,q_auto,f_auto"; got != want {
		t.Errorf("grid: got %q, want %q", got, want)
	}
	if got, want := ProjectProfile.Transformation(), "c_limit,w_2000,h_2000,q_auto,f_auto"; got != want {
		t.Errorf("project: got %q, want %q", got, want)
	}
}

func TestSniff(t *testing.T) {
	ct, err := Sniff(pngBytes(t, 2, 2))
	if err != nil || ct != "image/png" {
		t.Errorf("png: got (%q, %v)", ct, err)
	}

	_, err = Sniff([]byte("%PDF-1.7 not an image"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("pdf: expected ErrUnsupportedType, got %v", err)
	}

	_, err = Sniff([]byte("<svg xmlns='http://www.w3.org/2000/svg'></svg>"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("svg: expected ErrUnsupportedType, got %v", err)
	}
}

func TestTransform(t *testing.T) {
	small := Profile{Width: 40, Height: 40, Crop: CropFill}
	limit := Profile{Width: 50, Height: 50, Crop: CropLimit}

	tests := []struct {
		name         string
		srcW, srcH   int
		profile      Profile
		wantW, wantH int
	}{
		{"fill landscape", 120, 60, small, 40, 40},
		{"fill portrait", 30, 90, small, 40, 40},
		{"limit shrinks wide", 200, 100, limit, 50, 25},
		{"limit shrinks tall", 100, 200, limit, 25, 50},
		{"limit never upscales", 20, 10, limit, 20, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, w, h, err := Transform(pngBytes(t, tt.srcW, tt.srcH), tt.profile)
			if err != nil {
				t.Fatalf("Transform: %v", err)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("size: got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
			img, err := jpeg.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("output is not JPEG: %v", err)
			}
			if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
				t.Errorf("encoded size %v does not match reported %dx%d", b, w, h)
			}
		})
	}
}

func TestTransformRejectsGarbage(t *testing.T) {
	if _, _, _, err := Transform([]byte("not an image"), GridProfile); err == nil {
		t.Error("expected error for undecodable input")
	}
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func (f *fakeObjects) Put(_ context.Context, key, contentType string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeObjects) FileURL(key string) string { return "https://cdn.test/" + key }

func TestS3Host(t *testing.T) {
	objects := &fakeObjects{objects: map[string][]byte{}}
	host := NewS3(objects)
	ctx := context.Background()

	res, err := host.Upload(ctx, Upload{Data: pngBytes(t, 1000, 500), ContentType: "image/png"}, GridProfile)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(res.PublicID, "hs-architects/home-grid/") {
		t.Errorf("PublicID = %q", res.PublicID)
	}
	if res.URL != "https://cdn.test/"+res.PublicID+".jpg" {
		t.Errorf("URL = %q", res.URL)
	}
	if res.Width != 800 || res.Height != 800 {
		t.Errorf("size = %dx%d, want 800x800", res.Width, res.Height)
	}
	if _, ok := objects.objects[res.PublicID+".jpg"]; !ok {
		t.Fatal("object was not stored")
	}

	if err := host.Delete(ctx, res.PublicID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(objects.objects) != 0 {
		t.Error("object was not deleted")
	}

	if err := host.Delete(ctx, "../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete traversal: expected ErrNotFound, got %v", err)
	}
}

func TestS3HostPropagatesStoreErrors(t *testing.T) {
	host := NewS3(&fakeObjects{objects: map[string][]byte{}, putErr: errors.New("bucket gone")})
	_, err := host.Upload(context.Background(), Upload{Data: pngBytes(t, 10, 10)}, ProjectProfile)
	if err == nil || !strings.Contains(err.Error(), "bucket gone") {
		t.Errorf("expected store error, got %v", err)
	}
}

// cloudinaryStub answers the upload and destroy endpoints.
func cloudinaryStub(t *testing.T, fields *map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
		}
		got := map[string]string{"path": r.URL.Path}
		for k, v := range r.Form {
			got[k] = v[0]
		}
		if r.MultipartForm != nil {
			for k, v := range r.MultipartForm.Value {
				got[k] = v[0]
			}
		}
		*fields = got

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/image/upload"):
			json.NewEncoder(w).Encode(map[string]any{
				"public_id":  "hs-architects/home-grid/abc123",
				"secure_url": "https://res.cloudinary.com/hs/image/upload/hs-architects/home-grid/abc123.jpg",
				"width":      800,
				"height":     800,
			})
		case strings.HasSuffix(r.URL.Path, "/image/destroy"):
			result := "ok"
			if got["public_id"] == "missing" {
				result = "not found"
			}
			json.NewEncoder(w).Encode(map[string]any{"result": result})
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"message":"unknown endpoint"}}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCloudinaryUploadAndDelete(t *testing.T) {
	var fields map[string]string
	srv := cloudinaryStub(t, &fields)

	host, err := NewCloudinary("hs", "key", "secret")
	if err != nil {
		t.Fatalf("NewCloudinary: %v", err)
	}
	host.setUploadPrefix(srv.URL)
	ctx := context.Background()

	res, err := host.Upload(ctx, Upload{Data: pngBytes(t, 4, 4), ContentType: "image/png"}, GridProfile)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.PublicID != "hs-architects/home-grid/abc123" || res.Width != 800 || res.Height != 800 {
		t.Errorf("result = %+v", res)
	}
	if fields["folder"] != GridProfile.Folder {
		t.Errorf("folder sent = %q", fields["folder"])
	}
	if fields["transformation"] != GridProfile.Transformation() {
		t.Errorf("transformation sent = %q", fields["transformation"])
	}
	if !strings.HasPrefix(fields["file"], "data:image/png;base64,") {
		t.Errorf("file sent = %.40q", fields["file"])
	}

	if err := host.Delete(ctx, "hs-architects/home-grid/abc123"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := host.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete missing: expected ErrNotFound, got %v", err)
	}
}

func TestCloudinarySignUpload(t *testing.T) {
	host, err := NewCloudinary("hs", "key", "secret")
	if err != nil {
		t.Fatalf("NewCloudinary: %v", err)
	}
	at := time.Unix(1_700_000_000, 0)

	sig, err := host.SignUpload("cover", "hs-architects", at)
	if err != nil {
		t.Fatalf("SignUpload: %v", err)
	}
	if sig.Timestamp != 1_700_000_000 || sig.CloudName != "hs" || sig.APIKey != "key" {
		t.Errorf("signature = %+v", sig)
	}
	if sig.PublicID != "hs-architects/cover" || sig.Folder != "hs-architects" {
		t.Errorf("ids = %q, %q", sig.PublicID, sig.Folder)
	}
	if len(sig.Signature) < 40 {
		t.Errorf("signature too short: %q", sig.Signature)
	}

	again, _ := host.SignUpload("cover", "hs-architects", at)
	if again.Signature != sig.Signature {
		t.Error("signing must be deterministic")
	}
	other, _ := host.SignUpload("cover", "hs-architects", at.Add(time.Second))
	if other.Signature == sig.Signature {
		t.Error("signature must depend on the timestamp")
	}

	if _, err := host.SignUpload("", "hs-architects", at); err == nil {
		t.Error("expected error for empty public id")
	}
}
