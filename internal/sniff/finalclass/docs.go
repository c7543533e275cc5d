package finalclass

import _ "embed"

// Documentation describes the rule in Markdown for `phpsniff explain`.
//
//go:embed docs.md
var Documentation string
