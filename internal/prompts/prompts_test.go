package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alertsData struct {
	City              string
	Origin            string
	Destination       string
	TrafficLevel      string
	WeatherConditions string
	Reports           []string
}

func TestDefaultRendersAlerts(t *testing.T) {
	t.Parallel()

	set, err := Default()
	require.NoError(t, err)

	out, err := set.Render(PredictiveAlerts, alertsData{
		City:              "Bengaluru",
		Origin:            "Koramangala",
		Destination:       "Indiranagar",
		TrafficLevel:      "heavy",
		WeatherConditions: "light rain",
		Reports:           []string{"Accident near Marathahalli bridge", "Jam at Silk Board"},
	})
	require.NoError(t, err)

	assert.Equal(t, "predictiveAlerts", out.Name)
	assert.Contains(t, out.Text, "Origin: Koramangala")
	assert.Contains(t, out.Text, "- Accident near Marathahalli bridge")
	assert.Contains(t, out.Text, "- Jam at Silk Board")
	assert.NotContains(t, out.Text, "none available")
}

func TestRenderWithoutReports(t *testing.T) {
	t.Parallel()

	set, err := Default()
	require.NoError(t, err)

	out, err := set.Render(PredictiveAlerts, alertsData{City: "Bengaluru", Origin: "abc", Destination: "def"})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "- none available")
}

func TestRenderMissingKeyFails(t *testing.T) {
	t.Parallel()

	set, err := Default()
	require.NoError(t, err)

	_, err = set.Render(RouteAnalysis, map[string]string{"Origin": "abc"})
	require.Error(t, err)

	_, err = set.Render("unknown", nil)
	require.Error(t, err)
}

func TestLoadOverride(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	override := "describe_issue:\n  text: \"Describe the issue in {{.City}} briefly.\"\n"
	require.NoError(t, os.WriteFile(path, []byte(override), 0o600))

	set, err := Load(path)
	require.NoError(t, err)

	out, err := set.Render(DescribeIssue, map[string]string{"City": "Mysuru"})
	require.NoError(t, err)
	assert.Equal(t, "describeIssue", out.Name)
	assert.Equal(t, "Describe the issue in Mysuru briefly.", out.Text)
}
