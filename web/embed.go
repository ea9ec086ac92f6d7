package web

import "embed"

// DistFS contains the static dashboard assets.
//
//go:embed all:dist
var DistFS embed.FS
