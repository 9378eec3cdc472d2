package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "onboard/pkg/domain-errors"
)

func TestCheckSliceCount(t *testing.T) {
	assert.NoError(t, CheckSliceCount("documents", MaxStagedDocuments, MaxStagedDocuments))

	err := CheckSliceCount("documents", MaxStagedDocuments+1, MaxStagedDocuments)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Equal(t, "documents", dErrors.FieldsOf(err)[0].Field)
}

func TestCheckStringLength(t *testing.T) {
	assert.NoError(t, CheckStringLength("feedback", strings.Repeat("a", MaxFeedbackLength), MaxFeedbackLength))

	err := CheckStringLength("feedback", strings.Repeat("a", MaxFeedbackLength+1), MaxFeedbackLength)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feedback exceeds max length")
}
