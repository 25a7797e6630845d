package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/render"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		name string
		want string
		err  bool
	}{
		{"index.html", "index.html", false},
		{"a/b/../c.html", "a/c.html", false},
		{"", "", true},
		{"/etc/passwd", "", true},
		{"../up.html", "", true},
		{"a/../../up.html", "", true},
		{"..", "", true},
		{`a\b`, "", true},
	}
	for _, tt := range tests {
		got, err := cleanName(tt.name)
		if (err != nil) != tt.err {
			t.Errorf("cleanName(%q) error = %v, wantErr %v", tt.name, err, tt.err)
			continue
		}
		if got != tt.want {
			t.Errorf("cleanName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDirStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDirStore(dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	loc, err := store.Put(context.Background(), &Snapshot{
		Name:        "pages/home.html",
		ContentType: ContentTypeHTML,
		Body:        []byte("<p>hi</p>"),
		CreatedAt:   created,
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if want := filepath.Join(dir, "pages", "home.html"); loc != want {
		t.Errorf("location = %q, want %q", loc, want)
	}
	body, err := os.ReadFile(loc)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "<p>hi</p>" {
		t.Errorf("body = %q", body)
	}

	raw, err := os.ReadFile(loc + ".meta.json")
	if err != nil {
		t.Fatal(err)
	}
	var meta dirMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.Fatal(err)
	}
	if meta.Size != 9 || meta.ContentType != ContentTypeHTML || !meta.CreatedAt.Equal(created) {
		t.Errorf("meta = %+v", meta)
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "pages"))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".weft-") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}

func TestDirStoreLimits(t *testing.T) {
	store, err := NewDirStore(t.TempDir(), 4)
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.Put(context.Background(), &Snapshot{Name: "big.html", Body: []byte("12345")})
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
	_, err = store.Put(context.Background(), &Snapshot{Name: "../x", Body: nil})
	if !errors.Is(err, ErrInvalidName) {
		t.Errorf("err = %v, want ErrInvalidName", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Put(ctx, &Snapshot{Name: "a.html"}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(b))
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorePut(t *testing.T) {
	fake := &fakeS3{}
	store := NewS3Store(fake, "bucket", "snaps/")

	loc, err := store.Put(context.Background(), &Snapshot{
		Name:        "index.html",
		ContentType: ContentTypeHTML,
		Body:        []byte("<html></html>"),
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if loc != "s3://bucket/snaps/index.html" {
		t.Errorf("location = %q", loc)
	}
	if len(fake.inputs) != 1 {
		t.Fatalf("got %d PutObject calls, want 1", len(fake.inputs))
	}
	in := fake.inputs[0]
	if aws.ToString(in.Bucket) != "bucket" || aws.ToString(in.Key) != "snaps/index.html" {
		t.Errorf("bucket/key = %s/%s", aws.ToString(in.Bucket), aws.ToString(in.Key))
	}
	if aws.ToString(in.ContentType) != ContentTypeHTML {
		t.Errorf("content type = %q", aws.ToString(in.ContentType))
	}
	if aws.ToInt64(in.ContentLength) != 13 || fake.bodies[0] != "<html></html>" {
		t.Errorf("body = %q (%d)", fake.bodies[0], aws.ToInt64(in.ContentLength))
	}
	if in.Metadata["created-at"] == "" {
		t.Error("missing created-at metadata")
	}
}

func TestS3StoreErrors(t *testing.T) {
	boom := errors.New("denied")
	store := NewS3Store(&fakeS3{err: boom}, "bucket", "")
	if _, err := store.Put(context.Background(), &Snapshot{Name: "a.html"}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped denied", err)
	}

	store = NewS3Store(&fakeS3{}, "bucket", "").WithMaxSize(1)
	if _, err := store.Put(context.Background(), &Snapshot{Name: "a.html", Body: []byte("ab")}); !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

func TestPageRendersAndStores(t *testing.T) {
	mem := host.NewMemory()
	body := mem.NewContainer("div")
	p, _ := mem.CreateNode("p")
	txt, _ := mem.CreateText("hello")
	mem.AppendChild(p, txt)
	mem.AppendChild(body, p)

	fake := &fakeS3{}
	r := render.NewRenderer(render.RendererConfig{})
	loc, err := Page(context.Background(), NewS3Store(fake, "b", ""), r, "index.html", render.PageData{
		Body:  body,
		Title: "Demo",
	})
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if loc != "s3://b/index.html" {
		t.Errorf("location = %q", loc)
	}
	html := fake.bodies[0]
	for _, want := range []string{"<title>Demo</title>", "<p>hello</p>", `id="weft-root"`} {
		if !strings.Contains(html, want) {
			t.Errorf("page lacks %q:\n%s", want, html)
		}
	}
}

func TestNewS3ClientOptions(t *testing.T) {
	client := NewS3Client(S3Config{Region: "eu-west-1", Endpoint: "http://localhost:9000", PathStyle: true})
	opts := client.Options()
	if opts.Region != "eu-west-1" || !opts.UsePathStyle {
		t.Errorf("options region=%q pathStyle=%v", opts.Region, opts.UsePathStyle)
	}
	if aws.ToString(opts.BaseEndpoint) != "http://localhost:9000" {
		t.Errorf("endpoint = %q", aws.ToString(opts.BaseEndpoint))
	}
}
