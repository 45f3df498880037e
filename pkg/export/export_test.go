package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderOrdersColumnsAndNeutralizesFormulas(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"student", "average"},
		Rows: []map[string]string{
			{"average": "65.00", "student": "Ana"},
			{"student": "=HYPERLINK(\"x\")", "average": "-3"},
		},
	})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "student,average", lines[0])
	assert.Equal(t, "Ana,65.00", lines[1])
	assert.Equal(t, `"'=HYPERLINK(""x"")",-3`, lines[2])
}

func TestCSVRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(Report{
		Title: "Academic Report",
		Facts: []Fact{{Label: "Overall average", Value: "65.00"}},
		Sections: []Section{{
			Heading: "Semester trend",
			Table: Dataset{
				Headers: []string{"semester", "percentage", "trend"},
				Rows:    []map[string]string{{"semester": "Semester 1", "percentage": "65.00", "trend": "stable"}},
			},
		}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().Render(Report{Title: "empty"})
	assert.Error(t, err)
}
