package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lg/diet-funnel-go-api/internal/nutrition"
)

// execute runs the root command with args and stdin, returning stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCalc_FlagsJSON(t *testing.T) {
	out, err := execute(t, "",
		"calc", "--json", "--sex", "male", "--biotype", "meso", "--age", "25", "--weight", "70",
		"--height", "175", "--activity", "1.55", "--goal", "maintain", "--state", "lean-moderate-fat")
	require.NoError(t, err)

	var res nutrition.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2542, res.Estimate.FinalCalories)
	assert.InDelta(t, 154, res.Macros.ProteinGrams, 1e-9)
}

func TestCalc_PromptsForMissingValues(t *testing.T) {
	out, err := execute(t, "30\n62,5\n168\n", "calc", "--sex", "female")
	require.NoError(t, err)

	assert.Contains(t, out, "Age: ")
	assert.Contains(t, out, "Height (cm): ")
	assert.Contains(t, out, "Daily target:")
}

func TestCalc_Incomplete(t *testing.T) {
	_, err := execute(t, "\n\n\n", "calc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "age")
}

func TestHashPassword(t *testing.T) {
	out, err := execute(t, "s3cret\n", "hash-password")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := execute(t, "\n", "hash-password")
	assert.Error(t, err)
}

func TestPlans(t *testing.T) {
	out, err := execute(t, "", "plans")
	require.NoError(t, err)
	assert.Contains(t, out, "basic")
	assert.Contains(t, out, "premium")

	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plans: []\n"), 0o644))
	_, err = execute(t, "", "plans", path)
	assert.Error(t, err)
}
