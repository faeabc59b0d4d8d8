package media

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Stand-in for ffmpeg: answers -version / -encoders and otherwise writes a
// few bytes to its last argument, the output path.
const fakeFFmpeg = `#!/bin/sh
for last; do :; done
if [ "$1" = "-version" ]; then
  echo "ffmpeg version 6.1-test Copyright (c) the FFmpeg developers"
  echo "configuration: --enable-libx264"
  exit 0
fi
if [ "$2" = "-encoders" ]; then
  echo " V....D libx264              libx264 H.264 / AVC"
  exit 0
fi
printf 'frame' > "$last"
`

const failingFFmpeg = `#!/bin/sh
echo "Invalid data found when processing input" >&2
exit 1
`

const silentFFmpeg = `#!/bin/sh
exit 0
`

const slowFFmpeg = `#!/bin/sh
exec sleep 5
`

const fakeFFprobe = `#!/bin/sh
if [ "$1" = "-version" ]; then
  echo "ffprobe version 6.1-test"
  exit 0
fi
cat <<'JSON'
{
  "streams": [
    {"index": 0, "codec_type": "audio", "codec_name": "aac"},
    {"index": 1, "codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720, "r_frame_rate": "30000/1001"}
  ],
  "format": {"duration": "12.500000", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}
JSON
`

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stubs are not supported on Windows")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func encoderCaps(ffmpeg string) Capabilities {
	return Capabilities{FFmpegPath: ffmpeg, HasFFmpeg: true, HasH264: true}
}
