package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveMode(t *testing.T) {
	var buf bytes.Buffer

	// A bytes.Buffer is not a terminal: auto resolves to markdown.
	r := NewRenderer(&buf, &buf, ModeAuto)
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())

	r = NewRenderer(&buf, &buf, ModeJSON)
	assert.Equal(t, ModeJSON, r.EffectiveMode())

	r = NewRenderer(&buf, &buf, "")
	assert.Equal(t, ModeMarkdown, r.EffectiveMode(), "empty mode defaults to auto")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeJSON)

	require.NoError(t, r.JSON(map[string]int{"rows": 3}))
	assert.JSONEq(t, `{"rows": 3}`, buf.String())
}

func TestPrintRouting(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeText)

	r.Println("hello")
	r.Printf("%d rows\n", 2)
	r.Errorf("warning: %s\n", "oops")

	assert.Equal(t, "hello\n2 rows\n", out.String())
	assert.Equal(t, "warning: oops\n", errOut.String())
}

func TestStylesAreNoOpsWhenPiped(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeAuto)

	styled := r.Styles().Header1.Render("Versions")
	assert.Equal(t, "Versions", styled)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Versions\n", FormatHeader(2, "Versions"))
	assert.Equal(t, "- **File:** budget.csv", FormatKeyValue("File", "budget.csv"))
}
