package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "contflow-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "contflow")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/contflow")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runContflow(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "CONTFLOW_LOG_LEVEL=error", "CONTFLOW_DB_DRIVER=", "CONTFLOW_DB_DSN=")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// newWorkspace initialises a workspace with the test chart of accounts.
func newWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runContflow(t, "init", dir, "--name", "Padaria Estrela")
	require.NoError(t, err, out)
	copyFile(t, "../../testdata/plano_de_contas.csv", filepath.Join(dir, "accounts", "plano_de_contas.csv"))
	return dir
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}
