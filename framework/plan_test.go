package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChangeSpecRejectsInvertedRange(t *testing.T) {
	_, err := NewChangeSpec(5, 2, "x = 1", "x = 2", "retype")
	require.Error(t, err)
}

func TestNewChangeSpecValidation(t *testing.T) {
	cases := []struct {
		name    string
		start   int
		end     int
		oldCode string
		wantErr bool
	}{
		{"valid single line", 3, 3, "x = 1", false},
		{"valid range", 3, 6, "x = 1", false},
		{"zero start", 0, 2, "x = 1", true},
		{"negative start", -1, 2, "x = 1", true},
		{"blank old code", 3, 4, "   ", true},
		{"empty old code", 3, 4, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			change, err := NewChangeSpec(tc.start, tc.end, tc.oldCode, "new", "reason")
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.start, change.StartLine)
			assert.Equal(t, tc.end, change.EndLine)
		})
	}
}

func TestChangeSpecLineCount(t *testing.T) {
	change, err := NewChangeSpec(3, 7, "old", "new", "reason")
	require.NoError(t, err)
	assert.Equal(t, 5, change.LineCount())
}

func TestParseRiskLevel(t *testing.T) {
	assert.Equal(t, RiskHigh, ParseRiskLevel("high"))
	assert.Equal(t, RiskMedium, ParseRiskLevel("Medium"))
	assert.Equal(t, RiskLow, ParseRiskLevel("low"))
	assert.Equal(t, RiskNone, ParseRiskLevel("anything else"))
}

func TestMaxRiskNeverDecreases(t *testing.T) {
	assert.Equal(t, RiskHigh, MaxRisk(RiskHigh, RiskLow))
	assert.Equal(t, RiskHigh, MaxRisk(RiskLow, RiskHigh))
	assert.Equal(t, RiskMedium, MaxRisk(RiskMedium, RiskNone))
}

func TestFixPlanRiskThreshold(t *testing.T) {
	plan := &FixPlan{Risk: RiskMedium}
	assert.True(t, plan.IsAcceptableRisk(RiskMedium))
	assert.True(t, plan.IsAcceptableRisk(RiskHigh))
	assert.False(t, plan.IsAcceptableRisk(RiskLow))
	assert.False(t, plan.IsHighRisk())

	plan.Risk = RiskHigh
	assert.True(t, plan.IsHighRisk())
}
