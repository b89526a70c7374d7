package audio_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"samplebot/internal/audio"
	"samplebot/internal/services"
	"samplebot/internal/testsupport"
)

const stubYtDlp = `out=""
fmt=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift ;;
    --audio-format) fmt="$2"; shift ;;
  esac
  shift
done
dir=$(dirname "$out")
printf 'AUDIO-%s' "$fmt" > "$dir/sample.$fmt"
echo '[info] downloading'
echo '{"id":"X","title":"Stub Title","duration":12.5}'
`

func TestFetchReadsTitleAndAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("yt-dlp", stubYtDlp))
	src := audio.NewSource(cfg, nil)

	got, err := src.Fetch(context.Background(), "https://youtu.be/X", "MP3")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got.Title != "Stub Title" {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if string(got.Data) != "AUDIO-mp3" {
		t.Fatalf("unexpected data %q", got.Data)
	}
}

func TestFetchFallsBackToIDAndOtherExtension(t *testing.T) {
	body := `while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
printf 'OPUS' > "$(dirname "$out")/sample.opus"
echo '{"id":"abc123","title":"  "}'
`
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("yt-dlp", body))
	got, err := audio.NewSource(cfg, nil).Fetch(context.Background(), "https://youtu.be/abc123", "wav")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got.Title != "abc123" || string(got.Data) != "OPUS" {
		t.Fatalf("unexpected audio %+v", got)
	}
}

func TestFetchToolFailure(t *testing.T) {
	body := "echo 'WARNING: something' >&2\necho 'ERROR: [youtube] X: Video unavailable' >&2\nexit 1\n"
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("yt-dlp", body))
	_, err := audio.NewSource(cfg, nil).Fetch(context.Background(), "https://youtu.be/X", "wav")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Video unavailable") {
		t.Fatalf("expected stderr summary in error, got %v", err)
	}
}

func TestFetchMissingOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("yt-dlp", "echo '{\"title\":\"t\"}'\n"))
	_, err := audio.NewSource(cfg, nil).Fetch(context.Background(), "https://youtu.be/X", "wav")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestFetchTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("yt-dlp", "exec sleep 5\n"))
	cfg.Audio.TimeoutSeconds = 1
	_, err := audio.NewSource(cfg, nil).Fetch(context.Background(), "https://youtu.be/X", "wav")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestFetchRejectsUnsupportedFormat(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("yt-dlp", "exit 99\n"))
	_, err := audio.NewSource(cfg, nil).Fetch(context.Background(), "https://youtu.be/X", "midi")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
