// Where: internal/domain/topology/label.go
// What: Build-time labels for compute versions.
// Why: Keep version labeling opaque and rendered from a single template.
package topology

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

const versionDescriptionTemplate = `Version deployed on {{ dateInZone "02-01-2006" .Time "UTC" }}`

var (
	descriptionOnce sync.Once
	descriptionTmpl *template.Template
	descriptionErr  error
)

var labelReplacer = strings.NewReplacer("-", "", ":", "", ".", "")

// CreationLabel derives an opaque, unique-per-instant label from t.
// Callers must not parse it.
func CreationLabel(t time.Time) string {
	return "v" + labelReplacer.Replace(t.UTC().Format(time.RFC3339Nano))
}

// VersionDescription renders the human description attached to a version.
func VersionDescription(t time.Time) (string, error) {
	descriptionOnce.Do(func() {
		descriptionTmpl, descriptionErr = template.New("version").
			Funcs(sprig.TxtFuncMap()).
			Option("missingkey=error").
			Parse(versionDescriptionTemplate)
	})
	if descriptionErr != nil {
		return "", fmt.Errorf("parse version description: %w", descriptionErr)
	}
	var buf bytes.Buffer
	if err := descriptionTmpl.Execute(&buf, struct{ Time time.Time }{Time: t}); err != nil {
		return "", fmt.Errorf("render version description: %w", err)
	}
	return buf.String(), nil
}
