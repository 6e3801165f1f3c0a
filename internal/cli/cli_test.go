package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/patuh/patuh/internal/catalog"
	"github.com/patuh/patuh/internal/compliance"
	"github.com/patuh/patuh/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag in the tree so commands can run repeatedly
// in one process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"PATUH_CATALOG", "PATUH_RECEIPT", "PATUH_LOG_FORMAT", "PATUH_METRICS_TEXTFILE", "PATUH_OTEL_ENABLED"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	teardown()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func decodeResult(t *testing.T, out string) models.ValidationResult {
	t.Helper()
	var res models.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	return res
}

func TestValidateText_NonCompliant(t *testing.T) {
	out, err := executeCommand(t, "", "validate", "text", "--text", "Amalan ini mengandungi unsur khurafat.")
	require.NoError(t, err)

	res := decodeResult(t, out)
	assert.False(t, res.IsCompliant)
	assert.Equal(t, models.ValidatorText, res.Validator)
	assert.Equal(t, "2025.1", res.CatalogVersion)
	require.NotEmpty(t, res.Findings)
	assert.Equal(t, "khurafat", res.Findings[0].Term)
}

func TestValidateText_StrictExitCode(t *testing.T) {
	_, err := executeCommand(t, "", "validate", "text", "--strict", "--text", "Amalan ini mengandungi unsur khurafat.")

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
	assert.Equal(t, 2, exitErr.Code)
	assert.True(t, exitErr.Silent)
}

func TestValidateText_FromFileHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post.html")
	writeFile(t, path, "<html><body><script>var judi = 1;</script><p>Selamat datang.</p></body></html>")

	out, err := executeCommand(t, "", "validate", "text", "--file", path)
	require.NoError(t, err)

	res := decodeResult(t, out)
	assert.True(t, res.IsCompliant, "script contents must not be scanned")
	assert.Empty(t, res.Findings)
}

func TestValidateCitation_FromStdin(t *testing.T) {
	record := "source_attribution: Mushaf Malaysia\nprimary_reference_id: 2\nsecondary_reference_id: 255\n"

	out, err := executeCommand(t, record, "validate", "citation")
	require.NoError(t, err)

	res := decodeResult(t, out)
	assert.True(t, res.IsCompliant)
	assert.Equal(t, models.ValidatorCitation, res.Validator)
}

func TestValidateCitation_UnknownField(t *testing.T) {
	_, err := executeCommand(t, "surah: Al-Baqarah\n", "validate", "citation")
	assert.Error(t, err)
}

func TestValidate_ReceiptRecordsVerdict(t *testing.T) {
	receiptPath := filepath.Join(t.TempDir(), "receipt.json")

	_, err := executeCommand(t, "", "--receipt", receiptPath, "validate", "policy", "--text", "Hukum solat ini adalah wajib.")
	require.NoError(t, err)

	data, err := os.ReadFile(receiptPath)
	require.NoError(t, err)

	var receipt map[string]any
	require.NoError(t, json.Unmarshal(data, &receipt))
	assert.Equal(t, "patuh validate policy", receipt["command"])
	assert.Contains(t, receipt, "verdict")
	assert.Contains(t, receipt, "catalog")
	assert.NotContains(t, string(data), "Hukum solat", "receipts must not store submitted content")
}

func TestFooter(t *testing.T) {
	out, err := executeCommand(t, "", "footer", "quran")
	require.NoError(t, err)
	assert.Contains(t, out, "Mushaf Malaysia (JAKIM)")
	assert.Contains(t, out, "e-Fatwa Malaysia")
}

func TestFooter_List(t *testing.T) {
	out, err := executeCommand(t, "", "footer", "--list")
	require.NoError(t, err)
	assert.Equal(t, "fatwa\nhadith\nquran\ntafsir\n", out)
}

func TestFooter_UnknownContentType(t *testing.T) {
	_, err := executeCommand(t, "", "footer", "blog")
	assert.ErrorIs(t, err, compliance.ErrUnknownContentType)
}

func TestCheck_PassAndFail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "content", "clean.md"), "Selamat datang ke kuliah maghrib.")
	writeFile(t, filepath.Join(dir, "records", "ayat.citation.yaml"),
		"source_attribution: Mushaf Malaysia\nprimary_reference_id: 2\nsecondary_reference_id: 255\n")

	out, err := executeCommand(t, "", "check", "--format", "json", filepath.Join(dir, "**", "*"))
	require.NoError(t, err)

	var result CheckResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, outcomePass, result.Outcome)
	assert.Equal(t, 2, result.Summary.Total)

	writeFile(t, filepath.Join(dir, "content", "bad.md"), "Amalan ini mengandungi unsur khurafat.")

	out, err = executeCommand(t, "", "check", "--format", "json", filepath.Join(dir, "**", "*"))
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
	assert.Equal(t, 1, exitErr.Code)
	assert.True(t, exitErr.Silent, "json output should not be followed by an error line")

	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, outcomeFail, result.Outcome)
	assert.Equal(t, 1, result.Summary.NonCompliant)
}

func TestCheck_SARIF(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.md"), "Amalan ini mengandungi unsur khurafat.")

	out, err := executeCommand(t, "", "check", "--format", "sarif", "--fail-on", "none", "--gate", "baseline", filepath.Join(dir, "*.md"))

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "baseline gate fails on non-compliant content")
	assert.Contains(t, out, `"version": "2.1.0"`)
	assert.Contains(t, out, "akidah_violations/khurafat")
}

func TestCheck_NoMatches(t *testing.T) {
	_, err := executeCommand(t, "", "check", filepath.Join(t.TempDir(), "*.md"))
	assert.Error(t, err)
}

func TestCatalogDiff(t *testing.T) {
	data, err := catalog.Marshal(catalog.MustDefault())
	require.NoError(t, err)
	edited, err := catalog.Parse(data)
	require.NoError(t, err)

	for i := range edited.Categories {
		if edited.Categories[i].ID == "akidah_violations" {
			edited.Categories[i].Terms = edited.Categories[i].Terms[1:]
		}
	}
	edited.Version = "2025.2"
	data, err = catalog.Marshal(edited)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFile(t, path, string(data))

	out, err := executeCommand(t, "", "catalog", "diff", "embedded", path, "--format", "json")
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "removing a term is critical drift, got %v", err)

	var result DiffResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, outcomeFail, result.Outcome)
	assert.Equal(t, 1, result.Summary.Critical)
	assert.Equal(t, "2025.2", result.NewVersion)
}

func TestCatalogShow_UsesCatalogFlag(t *testing.T) {
	data, err := catalog.Marshal(catalog.MustDefault())
	require.NoError(t, err)
	custom, err := catalog.Parse(data)
	require.NoError(t, err)
	custom.Version = "2030.1"
	data, err = catalog.Marshal(custom)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFile(t, path, string(data))

	out, err := executeCommand(t, "", "--catalog", path, "catalog", "show", "--format", "json")
	require.NoError(t, err)

	var shown models.Catalog
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "2030.1", shown.Version)
}

func TestStream_ValidatesRequests(t *testing.T) {
	in := `{"id":1,"kind":"text","text":"Amalan ini mengandungi unsur khurafat."}` + "\n" +
		`{"id":2,"kind":"theme","text":"Bertawakkal kepada Allah."}` + "\n"

	out, err := executeCommand(t, in, "stream", "--workers", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, `"catalog_version":"2025.1"`)
	}
}

func TestStream_WatchRequiresCatalog(t *testing.T) {
	_, err := executeCommand(t, "", "stream", "--watch")
	assert.ErrorContains(t, err, "--watch requires --catalog")
}

func TestGateList(t *testing.T) {
	out, err := executeCommand(t, "", "gate", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "baseline")
	assert.Contains(t, out, "strict")
}

func TestCheck_EvidenceBundle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "clean.md"), "Selamat datang ke kuliah maghrib.")
	bundlePath := filepath.Join(dir, "out", "evidence.zip")

	_, err := executeCommand(t, "", "check", "--gate", "strict", "--evidence", bundlePath, filepath.Join(dir, "*.md"))
	require.NoError(t, err)

	zr, err := zip.OpenReader(bundlePath)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"manifest.json", "catalog.yaml", "gate.yaml", "report.json"}, names)
}
