package dataprocessing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/mpgamer75/code-altice/internal/errors"
	"github.com/mpgamer75/code-altice/internal/events"
)

func TestSpreadsheetExtractor(t *testing.T) {
	dir := t.TempDir()
	header := []string{"Report Name : Login Failures"}
	data := [][]string{
		dataRow("b", "timeout"),
		dataRow("a", "timeout"),
		dataRow("a", ""),
	}
	path := writeWorkbook(t, dir, "login.xlsx", header, data)

	ex, err := NewSpreadsheetExtractor(MatchLast).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Login Failures", ex.Header.Value("Report Name"))
	assert.Equal(t, []string{"a", "b"}, ex.Records.IPs)
	assert.Equal(t, []string{"timeout"}, ex.Records.Reasons)
}

func TestSpreadsheetExtractorUnreadableHeaderKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "login.xlsx", []string{"Period : Q1"}, [][]string{
		dataRow("10.0.0.2", "timeout"),
		dataRow("10.0.0.1", "locked"),
	})

	rec := &events.Recorder{}
	ext := NewSpreadsheetExtractor(MatchLast)
	ext.Emitter = rec
	ext.ReadHeader = func(*excelize.File, string, MatchPolicy) (HeaderMetadata, error) {
		return HeaderMetadata{}, apperrors.NewUnreadableSourceError(path, errors.New("no active sheet"))
	}

	ex, err := ext.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, ex.Header.Len())
	assert.Equal(t, Placeholder, ex.Header.Value("Period"))
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, ex.Records.IPs)
	assert.Equal(t, []string{"locked", "timeout"}, ex.Records.Reasons)
	assert.Equal(t, 1, rec.Count(events.LevelWarning))
}

func TestSpreadsheetExtractorNarrowTable(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "narrow.xlsx", nil, [][]string{{"t", "10.0.0.1", "x"}})

	ex, err := NewSpreadsheetExtractor(MatchLast).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1"}, ex.Records.IPs)
	assert.Empty(t, ex.Records.Reasons)
	assert.Equal(t, 0, ex.Header.Len())
}

func TestSpreadsheetExtractorNoDataRows(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "header_only.xlsx", []string{"Period : Q1"}, nil)

	ex, err := NewSpreadsheetExtractor(MatchLast).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Q1", ex.Header.Value("Period"))
	assert.Empty(t, ex.Records.IPs)
}

func TestDelimitedExtractor(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantIPs     []string
		wantReasons []string
	}{
		{
			name:        "named columns",
			content:     "Reason,Client IP,User\nbad password,10.0.0.5,a\nbad password,10.0.0.1,b\nlocked,10.0.0.1,c\n",
			wantIPs:     []string{"10.0.0.1", "10.0.0.5"},
			wantReasons: []string{"bad password", "locked"},
		},
		{
			name:        "bom before header",
			content:     "\xEF\xBB\xBFClient IP,Reason\n1.1.1.1,x\n",
			wantIPs:     []string{"1.1.1.1"},
			wantReasons: []string{"x"},
		},
		{
			name:        "positional fallback",
			content:     "c0,c1,c2,c3,c4,c5,c6\nt,2.0.0.1,u,h,e,s,expired\nt,10.0.0.5,u,h,e,s,expired\n",
			wantIPs:     []string{"10.0.0.5", "2.0.0.1"},
			wantReasons: []string{"expired"},
		},
		{
			name:        "rows wider than header skipped",
			content:     "Client IP,Reason\n1.1.1.1,x\n9.9.9.9,y,extra\n",
			wantIPs:     []string{"1.1.1.1"},
			wantReasons: []string{"x"},
		},
		{
			name:        "short rows tolerated",
			content:     "Client IP,Reason\n1.1.1.1\n2.2.2.2,z\n",
			wantIPs:     []string{"1.1.1.1", "2.2.2.2"},
			wantReasons: []string{"z"},
		},
		{
			name:        "empty file",
			content:     "",
			wantIPs:     []string{},
			wantReasons: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeText(t, t.TempDir(), "audit.csv", tt.content)
			ex, err := NewDelimitedExtractor().Extract(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIPs, ex.Records.IPs)
			assert.Equal(t, tt.wantReasons, ex.Records.Reasons)
			assert.Equal(t, 0, ex.Header.Len())
		})
	}
}

func TestDispatcher(t *testing.T) {
	dir := t.TempDir()
	xlsx := writeWorkbook(t, dir, "a.xlsx", []string{"Period : Q1"}, [][]string{dataRow("1.1.1.1", "r")})
	csvPath := writeText(t, dir, "b.csv", "Client IP,Reason\n2.2.2.2,s\n")
	txt := writeText(t, dir, "notes.txt", "Period : Q1\n")
	broken := writeText(t, dir, "broken.xlsx", "garbage")

	rec := &events.Recorder{}
	d := NewDefaultDispatcher(MatchLast, DispatcherOptions{Emitter: rec})
	ctx := context.Background()

	ex, err := d.Extract(ctx, xlsx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1.1.1"}, ex.Records.IPs)

	ex, err = d.Extract(ctx, csvPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, ex.Records.Reasons)

	ex, err = d.Extract(ctx, txt)
	require.NoError(t, err)
	assert.True(t, ex.Empty())
	assert.Equal(t, 1, rec.Count(events.LevelWarning))

	ex, err = d.Extract(ctx, broken)
	require.NoError(t, err)
	assert.True(t, ex.Empty())
	assert.Equal(t, 1, rec.Count(events.LevelError))

	assert.True(t, d.Supports("x.XLSM"))
	assert.False(t, d.Supports("x.txt"))
	assert.Equal(t, []string{".csv", ".xls", ".xlsm", ".xlsx", ".xltm", ".xltx"}, d.Extensions())
}

func TestDispatcherFailUnsupported(t *testing.T) {
	txt := writeText(t, t.TempDir(), "notes.txt", "x")
	d := NewDefaultDispatcher(MatchLast, DispatcherOptions{FailUnsupported: true})

	ex, err := d.Extract(context.Background(), txt)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnreadableSource))
	assert.True(t, ex.Empty())
}

func TestDispatcherRegister(t *testing.T) {
	d := NewDispatcher(DispatcherOptions{})
	called := false
	d.Register("LOG", ExtractorFunc(func(ctx context.Context, path string) (Extraction, error) {
		called = true
		return Extraction{Records: RecordSet{IPs: []string{"x"}}}, nil
	}))

	ex, err := d.Extract(context.Background(), "/tmp/app.log")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, []string{"x"}, ex.Records.IPs)
}
