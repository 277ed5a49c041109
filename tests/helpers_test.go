package tests_test

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
	"github.com/linkedin/goavro/v2"
)

// fakeGsutil serves gs://<bucket>/<client>/ out of $FAKE_BUCKET/<client>/.
// Only whole-client listings and recursive copies are supported.
const fakeGsutil = `#!/bin/sh
case "$1" in
ls)
  client=$(basename "$2")
  for artifact in "$FAKE_BUCKET/$client"/*; do
    [ -e "$artifact" ] && echo "$2$(basename "$artifact")"
  done
  ;;
-m)
  client=$(basename "$4")
  mkdir -p "$5/$client"
  cp -R "$FAKE_BUCKET/$client/." "$5/$client/"
  ;;
*)
  echo "unsupported gsutil call: $*" >&2
  exit 1
  ;;
esac
exit 0
`

const liftSchema = `{
  "type": "record",
  "name": "lift",
  "fields": [
    {"name": "site", "type": "string"},
    {"name": "lift", "type": "double"}
  ]
}`

// bucketContent maps a client to its artifacts and their records.
type bucketContent map[string]map[string][]any

// fakeBucket writes the artifacts of every client as avro containers and installs fakeGsutil.
// The script directory and the bucket root are stored under the "bin" and "bucket" labels.
func fakeBucket(data test.Data, helpers test.Helpers, content bucketContent) {
	script := data.Temp().Save(fakeGsutil, "bin", "gsutil")
	if err := os.Chmod(script, 0o755); err != nil { //nolint:gosec // the script must be executable
		helpers.T().Log(fmt.Sprintf("cannot make %s executable: %v", script, err))
		helpers.T().FailNow()
	}

	for client, artifacts := range content {
		for artifact, records := range artifacts {
			data.Temp().SaveToWriter(func(file io.Writer) error {
				writer, err := goavro.NewOCFWriter(goavro.OCFConfig{W: file, Schema: liftSchema})
				if err != nil {
					return err
				}

				return writer.Append(records)
			}, "bucket", client, artifact)
		}
	}

	data.Labels().Set("bin", data.Temp().Dir("bin"))
	data.Labels().Set("bucket", data.Temp().Dir("bucket"))
}

// fakeBucketCommand runs the binary against the bucket installed by fakeBucket.
func fakeBucketCommand(data test.Data, helpers test.Helpers, args ...string) test.TestableCommand {
	cmd := helpers.Command(append([]string{"--bucket", "gs://bucket/", "--work-dir", data.Temp().Dir("work")}, args...)...)
	cmd.Setenv("PATH", data.Labels().Get("bin")+string(os.PathListSeparator)+os.Getenv("PATH"))
	cmd.Setenv("FAKE_BUCKET", data.Labels().Get("bucket"))

	return cmd
}

// saveRecords writes a JSON dump into the test temp directory, records its path under the label, and returns it.
func saveRecords(data test.Data, label, records string) string {
	path := data.Temp().Save(records, label+".json")
	data.Labels().Set(label, path)

	return path
}

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectNotContains returns a comparator verifying the output does not contain a substring.
func expectNotContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("unexpected substring %q found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectLine returns a comparator verifying the output holds exactly this line.
func expectLine(line string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		for _, candidate := range strings.Split(stdout, "\n") {
			if strings.TrimSpace(candidate) == line {
				return
			}
		}

		testing.Log(fmt.Sprintf("expected line %q not found in output:\n%s", line, stdout))
		testing.Fail()
	}
}
