package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	k, err := Key("horses/horse_profile", "3_profile.png")
	require.NoError(t, err)
	assert.Equal(t, "horses/horse_profile/3_profile.png", k)

	for _, bad := range []string{"", "..", "../x", `a\b`} {
		_, err := Key("horses", bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}

func TestLocal_SaveDeleteURL(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root, "http://localhost:8080/static/")
	require.NoError(t, err)

	ctx := context.Background()
	key := "appointments/cbc/a.pdf"
	require.NoError(t, store.Save(ctx, key, strings.NewReader("%PDF-1.4"), "application/pdf"))

	data, err := os.ReadFile(filepath.Join(root, "appointments", "cbc", "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	assert.Equal(t, "http://localhost:8080/static/appointments/cbc/a.pdf", store.URL(key))

	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(root, "appointments", "cbc", "a.pdf"))
	assert.True(t, os.IsNotExist(err))

	// deleting again is fine
	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocal_KeyCannotEscapeRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(filepath.Join(root, "media"), "")
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "../../evil.txt", strings.NewReader("x"), ""))
	_, err = os.Stat(filepath.Join(root, "media", "evil.txt"))
	assert.NoError(t, err)
}

func TestURLOrNil(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "http://h/static")
	require.NoError(t, err)

	assert.Nil(t, URLOrNil(store, nil))
	empty := ""
	assert.Nil(t, URLOrNil(store, &empty))

	key := "xray/XRay_Random.png"
	got := URLOrNil(store, &key)
	require.NotNil(t, got)
	assert.Equal(t, "http://h/static/xray/XRay_Random.png", *got)
}

func jpegFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestNormalizeImage(t *testing.T) {
	out, err := NormalizeImage(bytes.NewReader(jpegFixture(t, 400, 200)), 100)
	require.NoError(t, err)

	img, format, err := image.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestNormalizeImage_Rejects(t *testing.T) {
	_, err := NormalizeImage(strings.NewReader("definitely not an image"), 100)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestSaveImageAndCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemory("http://x/static")

	u := &Upload{Filename: "Photo.JPG", Content: bytes.NewReader(jpegFixture(t, 20, 10))}
	assert.Equal(t, ".jpg", u.Ext())

	key, err := SaveImage(ctx, store, "horses/horse_profile", "7_profile.png", u, 0)
	require.NoError(t, err)
	assert.Equal(t, "horses/horse_profile/7_profile.png", key)
	assert.Equal(t, "http://x/static/horses/horse_profile/7_profile.png", store.URL(key))

	_, ok := store.Get(key)
	assert.True(t, ok)

	empty := ""
	Cleanup(ctx, store, slog.Default(), &key, nil, &empty)
	assert.Equal(t, 0, store.Len())
}

func TestSaveImageRejectsGarbage(t *testing.T) {
	store := NewMemory("")
	_, err := SaveImage(context.Background(), store, "measures", "a.png",
		&Upload{Filename: "a.png", Content: strings.NewReader("nope")}, 0)
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Equal(t, 0, store.Len())
}
