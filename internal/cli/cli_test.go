package cli

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := runWithLog(t, stdin, args...)
	return out, err
}

// runWithLog also returns what the host logged.
func runWithLog(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("NATIVEKIT_PREFS_BACKEND", "memory")
	t.Setenv("NATIVEKIT_LIB_PATH", "")
	t.Setenv("NATIVEKIT_LOG_LEVEL", "info")

	cmd := NewRootCmd()
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.json")}, args...))
	err := cmd.Execute()
	return out.String(), logs.String(), err
}

func TestPopupChoose(t *testing.T) {
	out, err := run(t, "", "popup", "--title", "Rate", "--button", "Yes", "--button", "Later", "--button", "No", "--choose", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "[1] Later")
	assert.Contains(t, out, "pressed button 1 (Later)")
}

func TestPopupReadsStdin(t *testing.T) {
	out, err := run(t, "2\n", "popup", "--button", "A", "--button", "B", "--button", "C")
	require.NoError(t, err)
	assert.Contains(t, out, "pressed button 2 (C)")

	out, err = run(t, "\n", "popup", "--button", "A")
	require.NoError(t, err)
	assert.Contains(t, out, "dismissed")
}

func TestPopupValidation(t *testing.T) {
	_, err := run(t, "", "popup")
	assert.ErrorContains(t, err, "at least one button")

	_, err = run(t, "", "popup", "--button", "A", "--choose", "4")
	assert.ErrorContains(t, err, "no button with index 4")
}

func TestNetwork(t *testing.T) {
	out, err := run(t, "", "network")
	require.NoError(t, err)
	assert.Contains(t, out, "backend:      fallback")
	assert.Contains(t, out, "type:         unknown")
}

func TestShare(t *testing.T) {
	out, err := run(t, "", "share", "--text", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "destination: editor")
	assert.Contains(t, out, "completed:   false")
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestShareWithImage(t *testing.T) {
	path := writePNG(t, 64, 48)
	out, logs, err := runWithLog(t, "", "share", "--text", "look", "--image", path, "--region", "8,8,32,16")
	require.NoError(t, err)
	assert.Contains(t, out, "destination: editor")
	assert.NotContains(t, out, "still open")

	m := regexp.MustCompile(`image_size=(\d+)`).FindStringSubmatch(logs)
	require.Len(t, m, 2, logs)
	size, err := strconv.Atoi(m[1])
	require.NoError(t, err)
	assert.Positive(t, size)
}

func TestShareRejectsBadRegion(t *testing.T) {
	path := writePNG(t, 4, 4)
	_, err := run(t, "", "share", "--image", path, "--region", "1,2,3")
	assert.ErrorContains(t, err, "must be x,y,w,h")
}

func TestRate(t *testing.T) {
	out, err := run(t, "", "rate")
	require.NoError(t, err)
	assert.Contains(t, out, "not asking yet")

	out, err = run(t, "", "rate", "--force", "--choose", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "state: declined")
}
