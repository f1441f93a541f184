package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmail(t *testing.T) {
	subject, body, err := RenderEmail("reviewer_invited", map[string]string{
		"RecipientName": "Dr. Vega",
		"Title":         "Workflow Reliability",
		"Link":          "http://localhost:8080/submissions/7",
		"DueDate":       "4 April 2026",
	})
	require.NoError(t, err)

	assert.Equal(t, "Invitation to review: Workflow Reliability", subject)
	assert.Contains(t, body, "Dr. Vega")
	assert.Contains(t, body, "4 April 2026")
	assert.Contains(t, body, "http://localhost:8080/submissions/7")
}

func TestRenderEmailEscapesValues(t *testing.T) {
	_, body, err := RenderEmail("decision_made", map[string]string{
		"RecipientName": "author",
		"Title":         "On <script> Injection",
		"Number":        "JMS-2026-TEST",
		"Decision":      "accept",
		"Link":          "http://localhost:8080/submissions/7",
	})
	require.NoError(t, err)

	// html/template escapes values before they reach the body.
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestRenderEmailUnknownTemplate(t *testing.T) {
	_, _, err := RenderEmail("no_such_template", nil)
	assert.Error(t, err)
}

func TestEverySubjectHasABody(t *testing.T) {
	for name := range emailSubjects {
		_, ok := emailBodies[name]
		assert.True(t, ok, "template %s has a subject but no body", name)
	}
	for name := range emailBodies {
		_, ok := emailSubjects[name]
		assert.True(t, ok, "template %s has a body but no subject", name)
	}
}
