package prompts

import _ "embed"

//go:embed templates/architect.md
var ArchitectBrief string

//go:embed templates/builder.md
var BuilderBrief string

//go:embed templates/welcome.md
var Welcome string
