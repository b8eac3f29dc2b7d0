package cmd

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocIndex_Sections(t *testing.T) {
	index := DocIndex()
	require.Len(t, index, 2)

	names := func(s DocSection) []string {
		var out []string
		for _, p := range s.Pages {
			out = append(out, p.Name)
		}
		return out
	}
	assert.Equal(t, "High-level interface", index[0].Title)
	assert.Equal(t, []string{"circuit", "sparsedm", "ptm", "qasm", "photons", "tp"}, names(index[0]))
	assert.Equal(t, "Backends", index[1].Title)
	assert.Equal(t, []string{"cpu", "parallel"}, names(index[1]))
}

func TestWriteDocIndex(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDocIndex(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "quantumsim documentation\n"))
	assert.Less(t, strings.Index(out, "High-level interface"), strings.Index(out, "Backends"))
	assert.Contains(t, out, "github.com/quantumsim/quantumsim/sim/sparsedm")
	assert.Contains(t, out, "serial CPU backend")
}

func TestBackendsCommand_ListsRegisteredBackends(t *testing.T) {
	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// WHEN the backends command runs
	backendsCmd.Run(backendsCmd, nil)

	// Restore stdout and read captured output
	_ = w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)

	// THEN both backends are listed and cpu is the default
	assert.Equal(t, "cpu (default)\nparallel\n", buf.String())
}
