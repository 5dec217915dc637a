// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"
)

// watchPageTemplate renders the in-browser viewer. It embeds a player
// for media types the browser can play inline and always offers the
// direct download link. The stream URL re-enters the gateway through
// the normal streaming path, so the page itself grants nothing — the
// capability hash in the URL does.
var watchPageTemplate = template.Must(template.New("watch").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="robots" content="noindex">
<title>{{.FileName}}</title>
<style>
body { margin: 0; background: #111; color: #eee; font-family: sans-serif; }
main { max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
video, audio { width: 100%; outline: none; }
a.download { display: inline-block; margin-top: 1rem; color: #8cf; }
</style>
</head>
<body>
<main>
<h1>{{.FileName}}</h1>
{{if .IsVideo}}<video controls autoplay src="{{.StreamURL}}"></video>
{{else if .IsAudio}}<audio controls src="{{.StreamURL}}"></audio>
{{else}}<p>No inline preview for this file type.</p>
{{end}}
<a class="download" href="{{.StreamURL}}" download="{{.FileName}}">Download {{.FileName}}</a>
</main>
</body>
</html>
`))

// watchPageData feeds watchPageTemplate.
type watchPageData struct {
	FileName  string
	StreamURL string
	IsVideo   bool
	IsAudio   bool
}

// renderWatchPage writes the viewer page for an already-validated
// object. streamURL is the relative streaming URL carrying the same
// id/hash pair.
func renderWatchPage(w io.Writer, meta contentMeta, streamURL string) error {
	return watchPageTemplate.Execute(w, watchPageData{
		FileName:  meta.fileName,
		StreamURL: streamURL,
		IsVideo:   strings.HasPrefix(meta.mimeType, "video/"),
		IsAudio:   strings.HasPrefix(meta.mimeType, "audio/"),
	})
}

// readableDuration formats an uptime as "1d 2h 3m 4s", dropping
// leading zero units.
func readableDuration(d time.Duration) string {
	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	seconds := d - minutes*time.Minute

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || len(parts) > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || len(parts) > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds/time.Second))
	return strings.Join(parts, " ")
}
