package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/karukan/engine/engine"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewCLI()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTypeCommitsHiragana(t *testing.T) {
	out, err := runCLI(t, "", "type", "konnnichiha")
	assert.NoError(t, err)
	assert.Contains(t, out, "commit: こんにちは")
}

func TestConvertProducesCandidates(t *testing.T) {
	out, err := runCLI(t, "", "convert", "かんじ")
	assert.NoError(t, err)
	assert.Contains(t, out, "last conversion:")
}

func TestServeStdinBlankLineCommits(t *testing.T) {
	out, err := runCLI(t, "k\na\n\n", "serve-stdin")
	assert.NoError(t, err)
	assert.Contains(t, out, "commit: か")
}

func TestParseKeyLineNamedAndLiteral(t *testing.T) {
	k, ok := parseKeyLine("return")
	assert.True(t, ok)
	assert.Equal(t, engine.KeyReturn, k.Special)

	k, ok = parseKeyLine("a")
	r, printable := k.Printable()
	assert.True(t, ok)
	assert.True(t, printable)
	assert.Equal(t, 'a', r)

	_, ok = parseKeyLine("notakey")
	assert.False(t, ok)
}

func TestLookupRequiresDictFlag(t *testing.T) {
	_, err := runCLI(t, "", "lookup", "foo")
	assert.Error(t, err)
}

func TestDumpRequiresDictFlag(t *testing.T) {
	_, err := runCLI(t, "", "dump")
	assert.Error(t, err)
}

func TestLearnedRunsWithNoLearningFile(t *testing.T) {
	// With no learning cache on disk yet, this renders an empty table
	// rather than failing.
	_, err := runCLI(t, "", "learned")
	assert.NoError(t, err)
}
