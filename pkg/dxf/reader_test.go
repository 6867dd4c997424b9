package dxf_test

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/leapstack-labs/leapcad/pkg/core"
	"github.com/leapstack-labs/leapcad/pkg/dxf"
	"github.com/leapstack-labs/leapcad/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stream joins (code, value) pairs into a group-code stream.
func stream(pairs ...string) string {
	return strings.Join(pairs, "\n") + "\n"
}

func entities(pairs ...string) string {
	head := []string{"0", "SECTION", "2", "ENTITIES"}
	return stream(append(head, pairs...)...)
}

func parse(t *testing.T, src string) *dxf.Container {
	t.Helper()
	c, err := dxf.NewReader(nil).Parse(strings.NewReader(src))
	require.NoError(t, err)
	return c
}

func TestParse_Line(t *testing.T) {
	c := parse(t, entities(
		"0", "LINE",
		"8", "0",
		"10", "1.0", "20", "2.0", "30", "0.0",
		"11", "3.0", "21", "4.0", "31", "0.0",
		"0", "ENDSEC",
	))

	require.Len(t, c.Shapes, 1)
	line, ok := c.Shapes[0].(*dxf.Line)
	require.True(t, ok)
	assert.Equal(t, geom.Vec3{1, 2, 0}, line.Start)
	assert.Equal(t, geom.Vec3{3, 4, 0}, line.End)
	assert.Equal(t, "0", line.Layer)
	assert.Equal(t, dxf.DefaultColor, line.Color)
	assert.Empty(t, c.Diagnostics)
}

func TestParse_LWPolyline(t *testing.T) {
	c := parse(t, entities(
		"0", "LWPOLYLINE",
		"70", "1",
		"10", "0", "20", "0",
		"10", "1", "20", "0",
		"10", "1", "20", "1",
		"0", "ENDSEC",
	))

	require.Len(t, c.Shapes, 1)
	pl, ok := c.Shapes[0].(*dxf.Polyline)
	require.True(t, ok)
	assert.True(t, pl.Closed)
	assert.Equal(t, []geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}, pl.Vertices)
}

func TestParse_LWPolylinePartialVertex(t *testing.T) {
	c := parse(t, entities(
		"0", "LWPOLYLINE",
		"10", "0", "20", "0",
		"20", "9", // second y for the same vertex is ignored
		"10", "5", // trailing x without y is dropped
		"0", "ENDSEC",
	))

	pl := c.Shapes[0].(*dxf.Polyline)
	assert.False(t, pl.Closed)
	assert.Equal(t, []geom.Vec3{{0, 0, 0}}, pl.Vertices)
}

func TestParse_Defaults(t *testing.T) {
	c := parse(t, entities(
		"0", "CIRCLE",
		"0", "ARC",
		"0", "TEXT",
		"0", "LWPOLYLINE",
		"0", "ENDSEC",
	))

	require.Len(t, c.Shapes, 4)

	circle := c.Shapes[0].(*dxf.Circle)
	assert.Zero(t, circle.Radius)
	assert.Equal(t, geom.Vec3{}, circle.Center)

	arc := c.Shapes[1].(*dxf.Arc)
	assert.Zero(t, arc.StartAngle)
	assert.Equal(t, 360.0, arc.EndAngle)

	text := c.Shapes[2].(*dxf.Text)
	assert.Equal(t, 1.0, text.Height)
	assert.Empty(t, text.Text)

	pl := c.Shapes[3].(*dxf.Polyline)
	assert.False(t, pl.Closed)
	assert.Empty(t, pl.Vertices)

	for _, s := range c.Shapes {
		assert.Equal(t, dxf.Attributes{Layer: "0", Color: 256}, s.Attrs())
	}
}

func TestParse_FieldErrorDropsOnlyThatField(t *testing.T) {
	c := parse(t, entities(
		"0", "CIRCLE",
		"8", "Holes",
		"62", "red",
		"10", "abc",
		"20", "2",
		"40", "3.5",
		"0", "ENDSEC",
	))

	require.Len(t, c.Shapes, 1)
	circle := c.Shapes[0].(*dxf.Circle)
	assert.Equal(t, geom.Vec3{0, 2, 0}, circle.Center)
	assert.Equal(t, 3.5, circle.Radius)
	assert.Equal(t, "Holes", circle.Layer)
	assert.Equal(t, 256, circle.Color)

	require.Len(t, c.Diagnostics, 2)
	assert.Equal(t, 62, c.Diagnostics[0].Code)
	assert.Equal(t, 10, c.Diagnostics[1].Code)
	assert.Equal(t, "abc", c.Diagnostics[1].Value)
	assert.Equal(t, "CIRCLE", c.Diagnostics[1].EntityType)
	assert.Equal(t, core.SeverityWarning, c.Diagnostics[1].Severity())

	var fe *dxf.FieldError
	assert.True(t, errors.As(c.Diagnostics[1], &fe))
	assert.Contains(t, fe.Error(), `invalid value "abc"`)
}

func TestParse_TextIgnoresZ(t *testing.T) {
	c := parse(t, entities(
		"0", "TEXT",
		"1", "  Label  ",
		"10", "1", "20", "2", "30", "7",
		"40", "2.5",
		"0", "ENDSEC",
	))

	text := c.Shapes[0].(*dxf.Text)
	assert.Equal(t, geom.Vec3{1, 2, 0}, text.Position)
	assert.Equal(t, "Label", text.Text)
	assert.Equal(t, 2.5, text.Height)
}

func TestParse_NoEntitiesSection(t *testing.T) {
	c := parse(t, stream("0", "SECTION", "2", "HEADER", "0", "ENDSEC", "0", "EOF"))
	assert.Empty(t, c.Shapes)

	c = parse(t, "")
	assert.Empty(t, c.Shapes)
}

func TestParse_IgnoresContentOutsideEntities(t *testing.T) {
	c := parse(t, stream(
		"0", "LINE", "10", "9",
		"2", "ENTITIES",
		"0", "LINE", "10", "1",
		"0", "ENDSEC",
		"0", "SECTION", "2", "OBJECTS",
		"0", "LINE", "10", "5",
	))

	require.Len(t, c.Shapes, 1)
	assert.Equal(t, 1.0, c.Shapes[0].(*dxf.Line).Start.X())
}

func TestParse_UnsupportedAndCaseInsensitive(t *testing.T) {
	c := parse(t, entities(
		"0", "HATCH", "10", "1",
		"0", "line", "10", "1",
		"0", "Spline",
		"0", "endsec",
	))

	require.Len(t, c.Shapes, 1)
	assert.Equal(t, dxf.TypeLine, c.Shapes[0].Kind())
	assert.Equal(t, 2, c.Skipped)
}

func TestParse_MalformedPairsAreSkipped(t *testing.T) {
	c := parse(t, entities(
		"0", "LINE",
		"x", "garbage",
		"10", "4",
		"0", "ENDSEC",
	))

	require.Len(t, c.Shapes, 1)
	assert.Equal(t, 4.0, c.Shapes[0].(*dxf.Line).Start.X())
}

func TestParse_TruncatedStreamKeepsLastEntity(t *testing.T) {
	src := entities("0", "CIRCLE", "40", "2", "10") // ends mid-pair

	c := parse(t, src)
	require.Len(t, c.Shapes, 1)
	assert.Equal(t, 2.0, c.Shapes[0].(*dxf.Circle).Radius)
}

func TestParse_ReadError(t *testing.T) {
	boom := errors.New("disk on fire")
	_, err := dxf.NewReader(nil).Parse(iotest.ErrReader(boom))
	require.ErrorIs(t, err, boom)
}

func TestParseFile(t *testing.T) {
	c, err := dxf.NewReader(nil).ParseFile("testdata/sample.dxf")
	require.NoError(t, err)

	assert.Equal(t, 5, c.Len())
	assert.Equal(t, 1, c.Skipped)
	assert.Equal(t, map[string]int{
		dxf.TypeLine:       1,
		dxf.TypeCircle:     1,
		dxf.TypeArc:        1,
		dxf.TypeLWPolyline: 1,
		dxf.TypeText:       1,
	}, c.CountByKind())

	line := c.Shapes[0].(*dxf.Line)
	assert.Equal(t, "Walls", line.Layer)
	assert.Equal(t, 1, line.Color)

	arc := c.Shapes[2].(*dxf.Arc)
	assert.Equal(t, 90.0, arc.EndAngle)

	_, err = dxf.NewReader(nil).ParseFile("testdata/missing.dxf")
	require.Error(t, err)
}

func TestTags(t *testing.T) {
	var got []dxf.Tag
	for tag := range dxf.Tags(strings.NewReader(" 10 \n 1.5 \nbad\nx\n20\n")) {
		got = append(got, tag)
	}

	require.Len(t, got, 1)
	assert.Equal(t, dxf.Tag{Code: 10, Value: "1.5", Line: 1}, got[0])
}
