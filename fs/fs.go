// Package appfs exposes the app's embedded static files:
// database migrations and email templates.
package appfs

import "embed"

//go:embed assets migrations assets/templates/email/_base.txt assets/templates/email/_base.gohtml
var FS embed.FS
