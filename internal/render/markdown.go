package render

import (
	"bytes"
	"fmt"
	"text/template"
)

type markdownRenderer struct{}

var mdTemplate = template.Must(template.New("report").Parse(`# {{ .Tool }} {{ .Command }} Report

**Verdict:** {{ .Summary.Verdict }}
**Errors:** {{ .Summary.Errors }} | **Warnings:** {{ .Summary.Warnings }}
{{ if .Input }}**Input:** {{ .Input }}
{{ end }}{{ if .Issues }}
---

## Findings
{{ range .Issues }}
- **{{ .Severity }}** ` + "`{{ .Location }}`" + ` ({{ .Rule }}): {{ .Message }}
{{ end }}{{ end }}{{ if .Renames }}
---

## Renames

| Raw | Normalized | Scope | Reason |
|-----|------------|-------|--------|
{{ range .Renames }}| {{ .Raw }} | {{ .Normalized }} | {{ .Scope }} | {{ .Reason }} |
{{ end }}{{ end }}
---
*{{ .Tool }} {{ .Version }}*
`))

func (r *markdownRenderer) Render(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := mdTemplate.Execute(&buf, report); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}
