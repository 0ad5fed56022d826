//go:build !windows

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_CloseDrainsConsoleTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regression.log")
	session, err := Setup(path)
	require.NoError(t, err)

	fmt.Fprintln(os.Stdout, "Executing SQL test cases")
	fmt.Fprint(os.Stdout, "tail without newline")

	require.NoError(t, session.Close())
	assert.NoError(t, session.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), ":INFO:STDOUT:Executing SQL test cases")
	assert.Contains(t, string(data), ":INFO:STDOUT:tail without newline")
}
