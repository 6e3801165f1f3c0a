package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/patuh/patuh/internal/compliance"
	"github.com/patuh/patuh/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "posts", "a.md"), "a")
	writeFile(t, filepath.Join(dir, "posts", "2025", "b.md"), "b")
	writeFile(t, filepath.Join(dir, "posts", "c.txt"), "c")
	writeFile(t, filepath.Join(dir, "records", "q.citation.yaml"), "source_attribution: x")

	files, err := Expand([]string{
		filepath.Join(dir, "posts", "**", "*.md"),
		filepath.Join(dir, "posts", "a.md"),
		filepath.Join(dir, "records", "*"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "posts", "2025", "b.md"),
		filepath.Join(dir, "posts", "a.md"),
		filepath.Join(dir, "records", "q.citation.yaml"),
	}, files)
}

func TestExpand_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sub", "x.md"), "x")

	files, err := Expand([]string{filepath.Join(dir, "*")})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestExpand_Errors(t *testing.T) {
	_, err := Expand(nil)
	assert.Error(t, err)

	_, err = Expand([]string{filepath.Join(t.TempDir(), "*.md")})
	assert.ErrorContains(t, err, "no files match")
}

func TestKindOf(t *testing.T) {
	tests := map[string]Kind{
		"post.md":                 KindText,
		"page.html":               KindText,
		"al-baqarah.citation.yml": KindCitation,
		"NIAT.Citation.JSON":      KindCitation,
		"hadith-12.saying.json":   KindSaying,
		"bot-reply.policy.txt":    KindPolicy,
		"seminar.theme.md":        KindTheme,
		"citation.yaml":           KindText,
		"my.theme.notes.md":       KindText,
	}
	for name, want := range tests {
		assert.Equal(t, want, KindOf(filepath.Join("content", name)), name)
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Policy ")
	require.NoError(t, err)
	assert.Equal(t, KindPolicy, k)

	_, err = ParseKind("video")
	assert.Error(t, err)
}

func TestLoadFile_HTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	writeFile(t, path, `<html><head><style>p { color: red }</style></head>
<body><h1>Kuliah</h1><p>Amalan ini adalah <b>khurafat</b>.</p><script>track("khurafat")</script></body></html>`)

	item, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, KindText, item.Kind)
	assert.Equal(t, path, item.Source)
	assert.Contains(t, item.Text, "Kuliah")
	assert.Contains(t, item.Text, "khurafat")
	assert.NotContains(t, item.Text, "track(")
	assert.NotContains(t, item.Text, "color")
	assert.NotContains(t, item.Text, "<p>")
}

func TestLoadFile_PlainTextUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply.policy.txt")
	writeFile(t, path, "Hukum solat ini adalah wajib.")

	item, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, KindPolicy, item.Kind)
	assert.Equal(t, "Hukum solat ini adalah wajib.", item.Text)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.md"))
	assert.Error(t, err)
}

func TestDecodeRecord_CitationYAML(t *testing.T) {
	item, err := DecodeRecord(KindCitation, []byte(`
source_attribution: Mushaf Malaysia (JAKIM)
primary_reference_id: 2
secondary_reference_id: 255
translation_text: Allah, tiada Tuhan melainkan Dia
translator_name: JAKIM
`))
	require.NoError(t, err)
	require.NotNil(t, item.Citation)
	require.NotNil(t, item.Citation.PrimaryReferenceID)
	assert.Equal(t, 2, *item.Citation.PrimaryReferenceID)
	assert.Equal(t, 255, *item.Citation.SecondaryReferenceID)
	assert.Equal(t, "JAKIM", item.Citation.TranslatorName)
	assert.False(t, item.Citation.IsCommercialUse)
}

func TestDecodeRecord_SayingJSONWithAlias(t *testing.T) {
	item, err := DecodeRecord(KindSaying, []byte(`{"grade": "Sahih", "is_externally_verified": true, "usage_context": "ruling"}`))
	require.NoError(t, err)
	require.NotNil(t, item.Saying)
	assert.Equal(t, models.GradeAuthentic, item.Saying.Grade)
	assert.Equal(t, models.UsageRuling, item.Saying.UsageContext)
	assert.True(t, item.Saying.IsExternallyVerified)
}

func TestDecodeRecord_Errors(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		data string
	}{
		{"unknown field", KindCitation, "source_atribution: typo\n"},
		{"bad grade", KindSaying, "grade: excellent\n"},
		{"empty", KindSaying, ""},
		{"text kind", KindText, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord(tt.kind, []byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestValidate_Dispatch(t *testing.T) {
	e, err := compliance.NewDefault()
	require.NoError(t, err)

	res, err := Validate(e, &Item{Kind: KindText, Text: "Ini ajaran sesat", ContentType: "article"})
	require.NoError(t, err)
	assert.Equal(t, models.ValidatorText, res.Validator)
	assert.False(t, res.IsCompliant)
	assert.Equal(t, "article", res.ContentType)

	res, err = Validate(e, &Item{Kind: KindSaying, Saying: &models.AttributedSaying{
		Grade:        models.GradeFabricated,
		UsageContext: models.UsageGeneralGuidance,
	}})
	require.NoError(t, err)
	assert.Equal(t, models.ValidatorAuthenticity, res.Validator)
	assert.False(t, res.IsCompliant)

	res, err = Validate(e, &Item{Kind: KindTheme, Text: "Doa dan tawakkal kepada Allah"})
	require.NoError(t, err)
	assert.True(t, res.IsCompliant)

	_, err = Validate(e, &Item{Kind: KindCitation})
	assert.True(t, errors.Is(err, compliance.ErrInvalidInput))

	_, err = Validate(e, nil)
	assert.True(t, errors.Is(err, compliance.ErrInvalidInput))

	_, err = Validate(e, &Item{Kind: "video"})
	assert.True(t, errors.Is(err, compliance.ErrInvalidInput))
}

func TestKind_Validator(t *testing.T) {
	assert.Equal(t, models.ValidatorText, KindText.Validator())
	assert.Equal(t, models.ValidatorCitation, KindCitation.Validator())
	assert.Equal(t, models.ValidatorAuthenticity, KindSaying.Validator())
	assert.Equal(t, models.ValidatorGenerated, KindPolicy.Validator())
	assert.Equal(t, models.ValidatorThematic, KindTheme.Validator())
}
