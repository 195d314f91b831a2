package rules

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilerace/race-engine/pkg/config"
	"github.com/tilerace/race-engine/pkg/rules"
)

func TestRulesCmd(t *testing.T) {
	config.RulesFile = ""
	cmd := NewRulesCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "sprint")
	table, err := rules.Load(&out)
	require.NoError(t, err)
	assert.ElementsMatch(t, rules.Default().EventTypes(), table.EventTypes())
}

func TestRulesCmd_MissingFile(t *testing.T) {
	config.RulesFile = filepath.Join(t.TempDir(), "missing.yml")
	defer func() { config.RulesFile = "" }()
	cmd := NewRulesCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
