// Package web holds the embedded browser front end.
package web

import _ "embed"

//go:embed index.html
var IndexHTML []byte
