package definitions

import "embed"

// FS contains the embedded builtin query definition YAML files
//
//go:embed *.yaml
var FS embed.FS
