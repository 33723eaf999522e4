//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedFcstPath holds the path to a shared fcst binary built once for all tests.
	sharedFcstPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// forecastCSV is a small forecast with two categories. Category "b" comes
// first so the report ordering is exercised.
const forecastCSV = `mcc,y_true,y_pred
b,3,4
a,1,1
a,2,2
`

// trainCSV is the training series used to scale RMSSE.
const trainCSV = `y_true
1
2
3
4
5
`

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getFcstBinary returns the path to the fcst binary, building it once if needed.
func getFcstBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "fcst-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		fcstPath := filepath.Join(tempDir, "fcst")
		buildCmd := exec.Command("go", "build", "-o", fcstPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build fcst: %v", err))
		}

		sharedFcstPath = fcstPath
	})

	return sharedFcstPath
}

// writeFixtures writes the forecast and training files into dir.
func writeFixtures(t *testing.T, dir string) (forecastPath, trainPath string) {
	t.Helper()
	forecastPath = filepath.Join(dir, "forecast.csv")
	trainPath = filepath.Join(dir, "train.csv")
	require.NoError(t, os.WriteFile(forecastPath, []byte(forecastCSV), 0o644))
	require.NoError(t, os.WriteFile(trainPath, []byte(trainCSV), 0o644))
	return forecastPath, trainPath
}

// runFcst runs the binary in dir with HOME pointed at dir so default SQLite
// files stay inside the test directory. It returns stdout.
func runFcst(t *testing.T, dir string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getFcstBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(append(os.Environ(), "HOME="+dir), env...)

	stdout, err := cmd.Output()
	if err != nil {
		var stderr []byte
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = exitErr.Stderr
		}
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout, stderr)
	}
	return string(stdout), err
}
