package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CityPulse/internal/domain"
	"CityPulse/internal/prompts"
)

func newTestDescriber(t *testing.T, gen *fakeGenerator) *Describer {
	t.Helper()

	set, err := prompts.Default()
	require.NoError(t, err)

	return NewDescriber(DescriberDeps{Generator: gen, Prompts: set, City: "Bengaluru", Timeout: time.Second})
}

func testImage(t *testing.T) domain.Image {
	t.Helper()

	img, err := domain.NewImage(pngHeader)
	require.NoError(t, err)
	return img
}

func TestDescribeIssueAttachesImage(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: map[string]string{
		"describeIssue": `{"description": "Large pothole filled with water.", "department": "bbmp", "locationDescription": "Near a bus stop."}`,
	}}
	describer := newTestDescriber(t, gen)

	out, err := describer.DescribeIssue(context.Background(), testImage(t))
	require.NoError(t, err)
	assert.Equal(t, domain.DepartmentBBMP, out.Department)
	assert.Equal(t, "Large pothole filled with water.", out.Description)

	req, ok := gen.request("describeIssue")
	require.True(t, ok)
	require.Len(t, req.Media, 1)
	assert.Equal(t, "image/png", req.Media[0].MIMEType)
	assert.Equal(t, pngHeader, req.Media[0].Data)
	assert.Contains(t, req.Prompt, "civic issue in Bengaluru")
	assert.Contains(t, req.Schema.Properties["department"].Description, "BBMP, BESCOM, BWSSB, BTP, Other")
}

func TestDescribeIssueClampsUnknownDepartment(t *testing.T) {
	t.Parallel()

	for _, dept := range []string{"Traffic Police", "", "Municipal Corporation"} {
		gen := &fakeGenerator{responses: map[string]string{
			"describeIssue": `{"description": "Broken streetlight.", "department": "` + dept + `", "locationDescription": ""}`,
		}}

		out, err := newTestDescriber(t, gen).DescribeIssue(context.Background(), testImage(t))
		require.NoError(t, err, dept)
		assert.Equal(t, domain.DepartmentOther, out.Department, dept)
	}
}

func TestDescribeIssueFailures(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{errs: map[string]error{"describeIssue": errBackend}}
	_, err := newTestDescriber(t, gen).DescribeIssue(context.Background(), testImage(t))
	require.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, errBackend)

	gen = &fakeGenerator{responses: map[string]string{"describeIssue": `{"department": "BBMP"}`}}
	_, err = newTestDescriber(t, gen).DescribeIssue(context.Background(), testImage(t))
	require.ErrorIs(t, err, domain.ErrGeneration)

	gen = &fakeGenerator{responses: map[string]string{
		"describeIssue": `{"description": "Broken streetlight.", "locationDescription": "Corner of 5th Main."}`,
	}}
	_, err = newTestDescriber(t, gen).DescribeIssue(context.Background(), testImage(t))
	require.ErrorIs(t, err, domain.ErrGeneration, "missing department must not default to Other")

	gen = &fakeGenerator{}
	_, err = newTestDescriber(t, gen).DescribeIssue(context.Background(), domain.Image{MIMEType: "text/plain", Data: []byte("x")})
	require.ErrorIs(t, err, domain.ErrInvalidImage)
	assert.Zero(t, gen.calls.Load())
}
