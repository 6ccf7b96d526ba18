package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullMatch = `<?xml version="1.0" encoding="UTF-8"?>
<match>
  <match-id>tictactoe.1580000000</match-id>
  <timestamp>1580000000123</timestamp>
  <startclock>30</startclock>
  <playclock>15</playclock>
  <sight-of>xplayer</sight-of>
  <role>xplayer</role>
  <role>oplayer</role>
  <player>HyperPlayer</player>
  <player>RandomPlayer</player>
  <scores>
    <reward>100</reward>
    <reward>0</reward>
  </scores>
  <history>
    <step><move>mark 1 1</move></step>
    <step><move>mark 2 2</move></step>
    <step><move>mark 1 2</move></step>
  </history>
</match>
`

func TestParseFullMatch(t *testing.T) {
	rec, err := Parse([]byte(fullMatch))
	require.NoError(t, err)

	assert.Equal(t, "tictactoe.1580000000", rec.MatchID)
	assert.Equal(t, "1580000000123", rec.Timestamp)
	assert.Equal(t, "30", rec.StartClock)
	assert.Equal(t, "xplayer", rec.SightOf)
	assert.Equal(t, "xplayer", rec.Role1)
	assert.Equal(t, "oplayer", rec.Role2)
	assert.Equal(t, "HyperPlayer", rec.Player1)
	assert.Equal(t, "RandomPlayer", rec.Player2)
	assert.Equal(t, "100", rec.Player1Score)
	assert.Equal(t, "0", rec.Player2Score)
	assert.True(t, rec.HasHistory)
	assert.Equal(t, 3, rec.NumSteps)

	// playclock in the file is ignored; it is a run constant.
	assert.Equal(t, "", rec.PlayClock)
}

func TestParseRolesArePositional(t *testing.T) {
	rec, err := Parse([]byte(`<match><role>white</role><role>black</role></match>`))
	require.NoError(t, err)
	assert.Equal(t, "white", rec.Role1)
	assert.Equal(t, "black", rec.Role2)
}

func TestParseExtraPlayersOverwriteSecondSlot(t *testing.T) {
	rec, err := Parse([]byte(`<match><player>A</player><player>B</player><player>C</player></match>`))
	require.NoError(t, err)
	assert.Equal(t, "A", rec.Player1)
	assert.Equal(t, "C", rec.Player2)
}

func TestParseEmptyFirstRoleStillTakesFirstSlot(t *testing.T) {
	rec, err := Parse([]byte(`<match><role/><role>black</role></match>`))
	require.NoError(t, err)
	assert.Equal(t, "", rec.Role1)
	assert.Equal(t, "black", rec.Role2)
}

func TestParseHistoryStepCount(t *testing.T) {
	var b strings.Builder
	b.WriteString("<match><history>")
	for i := 0; i < 37; i++ {
		b.WriteString("<step/>")
	}
	b.WriteString("</history></match>")

	rec, err := Parse([]byte(b.String()))
	require.NoError(t, err)
	assert.True(t, rec.HasHistory)
	assert.Equal(t, 37, rec.NumSteps)
	assert.Equal(t, "37", rec.NumStepsField())
}

func TestParseNoHistory(t *testing.T) {
	rec, err := Parse([]byte(`<match><match-id>m</match-id></match>`))
	require.NoError(t, err)
	assert.False(t, rec.HasHistory)
	assert.Equal(t, "", rec.NumStepsField())
}

func TestParseEmptyHistoryIsZero(t *testing.T) {
	rec, err := Parse([]byte(`<match><history></history></match>`))
	require.NoError(t, err)
	assert.Equal(t, "0", rec.NumStepsField())
}

func TestParseScoresAcrossContainers(t *testing.T) {
	rec, err := Parse([]byte(`<match>
		<scores><reward>10</reward></scores>
		<scores><reward>20</reward><reward>30</reward></scores>
	</match>`))
	require.NoError(t, err)
	assert.Equal(t, "10", rec.Player1Score)
	assert.Equal(t, "30", rec.Player2Score)
}

func TestParseOnlyDirectChildren(t *testing.T) {
	rec, err := Parse([]byte(`<match><state><role>nested</role><match-id>nested</match-id></state></match>`))
	require.NoError(t, err)
	assert.Equal(t, "", rec.Role1)
	assert.Equal(t, "", rec.MatchID)
}

func TestParseDecodesEntities(t *testing.T) {
	rec, err := Parse([]byte(`<match><player>Tom &amp; Jerry</player></match>`))
	require.NoError(t, err)
	assert.Equal(t, "Tom & Jerry", rec.Player1)
}

func TestParseLatin1Declaration(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<match><player>Jos\xe9</player><role>blanc</role></match>")
	rec, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "José", rec.Player1)
	assert.Equal(t, "blanc", rec.Role1)
}

func TestParseUnknownEncodingIsMalformed(t *testing.T) {
	_, err := Parse([]byte(`<?xml version="1.0" encoding="no-such-charset"?><match/>`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseTextStopsAtFirstChild(t *testing.T) {
	rec, err := Parse([]byte(`<match><player>A<x/>tail</player><role>w<!-- note -->hite<y/>b</role></match>`))
	require.NoError(t, err)
	assert.Equal(t, "A", rec.Player1)
	assert.Equal(t, "white", rec.Role1)
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"unclosed":     "<match><role>white</match>",
		"junk after":   "<match/><match/>",
		"text after":   "<match/>trailing",
		"not xml":      "match-id,timestamp",
		"unterminated": "<match><history>",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestParseFileSetsProvenance(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finalstate.xml")
	require.NoError(t, os.WriteFile(path, []byte(fullMatch), 0644))

	rec, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, rec.SourcePath)
	assert.Len(t, rec.Fingerprint, 32)
	assert.Equal(t, Fingerprint([]byte(fullMatch)), rec.Fingerprint)
}

func TestParseFileMalformedNamesPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finalstate.xml")
	require.NoError(t, os.WriteFile(path, []byte("<match>"), 0644))

	_, err := ParseFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), path)
}

func TestFingerprintDistinguishesContent(t *testing.T) {
	assert.NotEqual(t, Fingerprint([]byte("<a/>")), Fingerprint([]byte("<b/>")))
	assert.Equal(t, Fingerprint([]byte("<a/>")), Fingerprint([]byte("<a/>")))
}
