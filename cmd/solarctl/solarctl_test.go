package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/solar-dashboard/internal/domain/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetArgs(append([]string{"--no-color"}, args...))
	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestRootRegistersSubcommands(t *testing.T) {
	subs := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		subs[cmd.Name()] = true
	}
	for _, name := range []string{"curves", "trend", "predict", "token", "version"} {
		assert.True(t, subs[name], "%s should be registered", name)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "solarctl dev\n", out)
}

func TestCurvesJSON(t *testing.T) {
	out, err := runCLI(t, "curves", "--qout", "250", "--qloss", "50", "--tau", "4", "--json")
	require.NoError(t, err)

	var set curveSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	require.Len(t, set.HeatOutput.Values, 12)
	require.Len(t, set.HeatLoss.Values, 8)
	require.Len(t, set.NetUseful.Values, 8)
	assert.Equal(t, 0.0, set.HeatOutput.Values[0])
	assert.Equal(t, 158.03, set.HeatOutput.Values[4])
	assert.Equal(t, 42.5, set.HeatLoss.Values[0])
	assert.Equal(t, 201.0, set.NetUseful.Values[7])
	assert.Equal(t, "110s", set.HeatOutput.Labels[11])
}

func TestCurvesTable(t *testing.T) {
	out, err := runCLI(t, "curves", "--qout", "250", "--qloss", "50", "--tau", "4", "--json=false")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 13)
	assert.Contains(t, lines[0], "HEAT_OUTPUT")
	assert.Contains(t, lines[5], "158.03")
	assert.Contains(t, lines[12], "-")
}

func TestTrendStates(t *testing.T) {
	out, err := runCLI(t, "trend",
		"--prev-qout", "200", "--prev-qloss", "0", "--prev-efficiency", "80",
		"--qout", "250", "--qloss", "50", "--efficiency", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "+25.00% up")
	assert.Contains(t, out, "0% (flat)")
	assert.Contains(t, out, "-25.00% down")

	out, err = runCLI(t, "trend",
		"--prev-qout", "200", "--prev-qloss", "10", "--prev-efficiency", "80",
		"--qout", "0", "--qloss", "0", "--efficiency", "0")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "no data"))
}

func TestPredictCallsService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Circular", body["shape"])
		_, _ = w.Write([]byte(`{"predicted_values":{"Qout":250,"Qloss":50,"Efficiency(%)":61.5}}`))
	}))
	defer server.Close()

	out, err := runCLI(t, "predict", "--url", server.URL, "--shape", "Circular")
	require.NoError(t, err)
	assert.Contains(t, out, "Qout: 250.00")
	assert.Contains(t, out, "Net useful: 200.00")
	assert.Contains(t, out, "234.02")
}

func TestPredictSurfacesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid shape"}`))
	}))
	defer server.Close()

	_, err := runCLI(t, "predict", "--url", server.URL, "--shape", "Hexagonal")
	require.ErrorContains(t, err, "Invalid shape")
}

func TestTokenRoundTrip(t *testing.T) {
	out, err := runCLI(t, "token", "--secret", testSecret, "--subject", "ops", "--issuer", "solar-dashboard", "--ttl", "1h")
	require.NoError(t, err)

	claims, err := auth.NewTokens(testSecret, "solar-dashboard").Validate(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
}

func TestTokenRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	_, err := runCLI(t, "token", "--secret", "")
	require.ErrorContains(t, err, "at least 16 bytes")
}

func TestWriteTableAlignsStyledCells(t *testing.T) {
	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })

	rows := [][]cell{
		headerRow("T", "VALUE"),
		{plain("110s"), styled(color.New(color.FgGreen), "+25.00% up")},
		{plain("0s"), plain("1.00")},
	}

	color.NoColor = false
	var colored bytes.Buffer
	require.NoError(t, writeTable(&colored, rows))
	require.Contains(t, colored.String(), "\x1b[")

	color.NoColor = true
	var uncolored bytes.Buffer
	require.NoError(t, writeTable(&uncolored, rows))

	ansi := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	require.Equal(t, uncolored.String(), ansi.ReplaceAllString(colored.String(), ""))

	lines := strings.Split(strings.TrimSpace(uncolored.String()), "\n")
	require.Equal(t, "T     VALUE", lines[0])
	require.Equal(t, strings.Index(lines[0], "VALUE"), strings.Index(lines[1], "+25.00%"))
	require.Equal(t, strings.Index(lines[0], "VALUE"), strings.Index(lines[2], "1.00"))
}
