package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

func TestSummaryCmd_Use(t *testing.T) {
	assert.Equal(t, "summary [session-id]", summaryCmd.Use)
}

func TestSummaryCmd_SessionSummary(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"summary", "sess-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Overview: Two reports about revenue.")
	assert.Contains(t, buf.String(), "Key findings:")
	assert.Contains(t, buf.String(), "- revenue grew")
	assert.Contains(t, buf.String(), "Conclusions:")
}

func TestSummaryCmd_DocumentSummary(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	summaryService.(*mockSummaryService).summary = &domain.Summary{
		Mode:      domain.SummarySingle,
		MainTopic: "quarterly revenue",
		KeyPoints: []string{"revenue grew 4%"},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"summary", "--document", "doc-1", "sess-1"})
	defer func() {
		rootCmd.SetArgs(nil)
		summaryDocumentID = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Main topic: quarterly revenue")
	assert.Contains(t, buf.String(), "- revenue grew 4%")
	assert.Equal(t, "doc-1", summaryService.(*mockSummaryService).documentID)
}

func TestSummaryCmd_ErrorsWithoutServices(t *testing.T) {
	oldSummaryService := summaryService
	summaryService = nil
	defer func() { summaryService = oldSummaryService }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"summary", "sess-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
