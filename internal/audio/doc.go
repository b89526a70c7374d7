// Package audio acquires audio from media URLs by running yt-dlp.
//
// Source implements sample.AudioSource. Each Fetch runs yt-dlp in a fresh
// temporary directory with audio extraction enabled, reads the title from the
// JSON yt-dlp prints, and returns the extracted file's bytes. yt-dlp relies
// on ffmpeg for the extraction step.
package audio
