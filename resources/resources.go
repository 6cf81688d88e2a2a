package resources

import "embed"

//go:embed i18n.yaml
var FS embed.FS
