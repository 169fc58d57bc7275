package service

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"smritikosha/memory-api/model"

	"github.com/spf13/viper"
)

// stubRenderer points render.ffmpeg_path at a script that writes fixed
// bytes to stdout, standing in for a real encode
func stubRenderer(t *testing.T, payload string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("stub needs a shell")
	}

	stub := filepath.Join(t.TempDir(), "encoder")
	script := "#!/bin/sh\nprintf '" + payload + "'\n"

	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	viper.Set("render.ffmpeg_path", stub)
}

func TestRunRenderJobChecksumsOutput(t *testing.T) {
	stubRenderer(t, "stub video payload")

	params := model.RenderParams{
		VisualFlow: []model.ReelFrame{
			// "img" as an inline data URL, no network fetch involved
			{ImageURL: "data:image/png;base64,aW1n", Duration: 2},
		},
	}

	res, err := runRenderJob(context.Background(), "Stub Reel", params, 1)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if !bytes.Equal(res.MP4, []byte("stub video payload")) {
		t.Errorf("unexpected video bytes %q", res.MP4)
	}

	want := sha1.Sum(res.MP4)
	if res.Checksum != hex.EncodeToString(want[:]) {
		t.Errorf("checksum %q is not the SHA-1 of the video bytes", res.Checksum)
	}

	// 2s title card + the single 2s frame
	if !almostEqual(res.DurationSeconds, 4.0) {
		t.Errorf("duration = %v, want 4.0", res.DurationSeconds)
	}

	// The stub answers the poster invocation too
	if len(res.Poster) == 0 {
		t.Error("poster extraction should have produced bytes")
	}
}

func TestRunRenderJobEmptyFlow(t *testing.T) {
	stubRenderer(t, "unused")

	if _, err := runRenderJob(context.Background(), "t", model.RenderParams{}, 1); err == nil {
		t.Fatal("empty flow must not render")
	}
}
