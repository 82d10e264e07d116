package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixResultMergeCommutative(t *testing.T) {
	a := FixResult{Success: true, Confidence: 0.9, FixesApplied: []string{"a"}}
	b := FixResult{Success: false, Confidence: 0.4, RemainingIssues: []string{"b"}}

	ab := a.Merge(b)
	ba := b.Merge(a)

	assert.Equal(t, ab.Success, ba.Success)
	assert.Equal(t, ab.Confidence, ba.Confidence)
	assert.ElementsMatch(t, ab.FixesApplied, ba.FixesApplied)
	assert.ElementsMatch(t, ab.RemainingIssues, ba.RemainingIssues)
}

func TestFixResultMergeAssociative(t *testing.T) {
	a := FixResult{Success: true, Confidence: 0.9, FixesApplied: []string{"a"}}
	b := FixResult{Success: true, Confidence: 0.7, FixesApplied: []string{"b"}}
	c := FixResult{Success: true, Confidence: 0.8, FixesApplied: []string{"c"}}

	left := a.Merge(b).Merge(c)
	right := a.Merge(b.Merge(c))

	assert.Equal(t, left.Success, right.Success)
	assert.Equal(t, left.Confidence, right.Confidence)
	assert.Equal(t, left.FixesApplied, right.FixesApplied)
}

func TestFixResultMergeSemantics(t *testing.T) {
	a := FixResult{Success: true, Confidence: 0.9, FilesModified: []string{"a.go"}}
	b := FixResult{Success: true, Confidence: 0.6, FilesModified: []string{"b.go"}}

	merged := a.Merge(b)
	assert.True(t, merged.Success)
	assert.Equal(t, 0.6, merged.Confidence)
	assert.Equal(t, []string{"a.go", "b.go"}, merged.FilesModified)

	failed := merged.Merge(FixResult{Success: false, Confidence: 0.5})
	assert.False(t, failed.Success)
	assert.Equal(t, 0.5, failed.Confidence)
}

func TestFixFailure(t *testing.T) {
	res := FixFailure("no specialist")
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Zero(t, res.Confidence)
	assert.Equal(t, []string{"no specialist"}, res.RemainingIssues)
}

func TestValidationResultMerge(t *testing.T) {
	ok := Validated()
	bad := Invalid("duplicate definition", "empty block")

	merged := ok.Merge(bad)
	assert.False(t, merged.Valid)
	assert.Len(t, merged.Errors, 2)

	both := Validated().Merge(Validated())
	assert.True(t, both.Valid)
	assert.Empty(t, both.Errors)
}
