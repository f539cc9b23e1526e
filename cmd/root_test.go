package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/findings2xml/internal/config"
)

// isolate runs the command without any configuration file in scope and with
// flag state from earlier tests cleared.
func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv(config.EnvConfigPath, "")
	t.Chdir(dir)

	for _, name := range []string{"input", "output"} {
		flag := rootCmd.Flags().Lookup(name)
		require.NoError(t, flag.Value.Set(""))
		flag.Changed = false
	}
	return dir
}

func run(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = execute(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestConvert(t *testing.T) {
	dir := isolate(t)

	input := filepath.Join(dir, "findings.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"Key,Target,Lines,Risk Rating,Summary,Ease of Exploitation,Type of Pentest\n"+
			"K1,/app,12,SQLi,desc,high,Web\n"), 0o644))
	output := filepath.Join(dir, "report.xml")

	code, _, stderr := run("-i", input, "--output", output)
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `<?xml version="1.0" encoding="UTF-8"?>`+"\n"))
	assert.Contains(t, string(data), `<finding severity="high" date="2023-05-30">`)
	assert.Contains(t, string(data), `<line start="12" end="12"/>`)

	assert.Contains(t, stderr, "report written")
	assert.Contains(t, stderr, "Jira-Pentest", "missing mapped column is warned about")
}

func TestConvert_UsesConfigFile(t *testing.T) {
	dir := isolate(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte(`
mapping:
  SEVERITY: "$critical"
input:
  delimiter: pipe
output:
  indent: "\t"
log:
  level: error
`), 0o644))

	input := filepath.Join(dir, "findings.csv")
	require.NoError(t, os.WriteFile(input, []byte("Key|Target\nK1|/app\n"), 0o644))
	output := filepath.Join(dir, "report.xml")

	code, _, stderr := run("-i", input, "-o", output)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stderr, "error level suppresses progress logs")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n\t\t<finding severity=\"critical\" date=\"2023-05-30\">\n")
	assert.Contains(t, string(data), `<location path="/app">`)
}

func TestConvert_MissingFlags(t *testing.T) {
	isolate(t)

	code, _, stderr := run("-i", "findings.csv")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `required flag(s) "output" not set`)
}

func TestConvert_MissingInput(t *testing.T) {
	dir := isolate(t)
	output := filepath.Join(dir, "report.xml")

	code, _, stderr := run("-i", filepath.Join(dir, "missing.csv"), "-o", output)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: input error:")
	assert.NoFileExists(t, output)
}

func TestConvert_InvalidConfig(t *testing.T) {
	dir := isolate(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte(`
mapping:
  SEVERTY: Risk
log:
  level: loud
`), 0o644))

	code, _, stderr := run("-i", "findings.csv", "-o", "report.xml")
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr, "Error: invalid configuration\nValidation completed with 2 error(s):\n"), stderr)
	assert.Contains(t, stderr, "mapping[SEVERTY]")
	assert.Contains(t, stderr, "log.level")
}

func TestMappingCommand(t *testing.T) {
	dir := isolate(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte(`
mapping:
  CVE_YEAR: Year
`), 0o644))

	code, stdout, stderr := run("mapping")
	require.Equal(t, 0, code, stderr)

	assert.True(t, strings.HasPrefix(stdout, "mapping:\n  REPORT_DATE: \"$2023-05-30\"\n"), stdout)
	assert.Contains(t, stdout, "  CVE_YEAR: \"Year\"\n")
	assert.Contains(t, stdout, "  CVE_SEQUENCE: \"$\"\n")
}

func TestVersionCommand(t *testing.T) {
	isolate(t)

	code, stdout, _ := run("version")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "findings2xml\nVersion:    "+Version+"\n")
}
