package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDepartment(t *testing.T) {
	t.Parallel()

	cases := map[string]Department{
		"BBMP":             DepartmentBBMP,
		"bescom":           DepartmentBESCOM,
		" BWSSB ":          DepartmentBWSSB,
		"btp":              DepartmentBTP,
		"Other":            DepartmentOther,
		"Traffic Police":   DepartmentOther,
		"":                 DepartmentOther,
		"Municipal Office": DepartmentOther,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDepartment(in), in)
	}
}

func TestParseDepartmentRejectsUnknown(t *testing.T) {
	t.Parallel()

	_, ok := ParseDepartment("Water Board")
	assert.False(t, ok)
	assert.Len(t, Departments(), 5)
}

func TestAlertSetNormalizeClamps(t *testing.T) {
	t.Parallel()

	set := PredictiveAlertSet{Alerts: []PredictiveAlert{
		{Type: "a", Relevance: 1.7, Confidence: -0.2},
		{Type: "b", Relevance: math.NaN(), Confidence: 0.4},
	}}
	set.Normalize()

	assert.Equal(t, 1.0, set.Alerts[0].Relevance)
	assert.Equal(t, 0.0, set.Alerts[0].Confidence)
	assert.Equal(t, 0.0, set.Alerts[1].Relevance)
	assert.Equal(t, 0.4, set.Alerts[1].Confidence)

	var empty PredictiveAlertSet
	empty.Normalize()
	assert.NotNil(t, empty.Alerts)
}

func TestSignalTitlesLimit(t *testing.T) {
	t.Parallel()

	snap := ConditionsSnapshot{Signals: []TrafficSignal{{Title: "a"}, {Title: "b"}, {Title: "c"}}}
	assert.Equal(t, []string{"a", "b"}, snap.SignalTitles(2))
	assert.Equal(t, []string{"a", "b", "c"}, snap.SignalTitles(0))
	assert.True(t, ConditionsSnapshot{}.Empty())
}
