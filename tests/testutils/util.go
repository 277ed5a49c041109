// Package testutils provides test infrastructure for avrocheck integration tests.
package testutils

import (
	"path/filepath"
	"runtime"

	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/agar/pkg/agar"
)

// Binaries built into bin/ by the build.
const (
	Avrocheck      = "avrocheck"
	AvroRegression = "avro-regression"
)

// Setup creates a test case configured to run the given binary from bin/.
func Setup(binary string) *test.Case {
	_, thisFile, _, _ := runtime.Caller(0) //nolint:dogsled // runtime.Caller returns 4 values, only file is needed
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	binaryPath := filepath.Join(projectRoot, "bin", binary)

	return agar.Setup(binaryPath)
}
