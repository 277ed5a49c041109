package tests_test

import (
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/avrocheck/tests/testutils"
)

const (
	referenceRecords = `[
  {"site": "a", "lift": 1.52, "stores": [1, 2, 3]},
  {"site": "b", "lift": 0.1}
]`
	reorderedRecords = `[
  {"site": "b", "lift": 0.2},
  {"site": "a", "lift": 1.57, "stores": [3, 2, 1]}
]`
	regressedRecords = `[
  {"site": "a", "lift": 4.2, "stores": [1, 2, 3]},
  {"site": "b", "lift": 0.1}
]`
)

func TestDiffAvros(t *testing.T) {
	testCase := testutils.Setup(testutils.Avrocheck)

	testCase.SubTests = []*test.Case{
		{
			Description: "diff-avros without arguments fails",
			Command:     test.Command("diff-avros"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "diff-avros on a nonexistent file fails",
			Command:     test.Command("diff-avros", "/nonexistent/a.avro", "/nonexistent/b.avro"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "reordered records within tolerance are identical",
			Setup: func(data test.Data, _ test.Helpers) {
				saveRecords(data, "reference", referenceRecords)
				saveRecords(data, "candidate", reorderedRecords)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("diff-avros", data.Labels().Get("reference"), data.Labels().Get("candidate"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectLine("IDENTICAL"),
				}
			},
		},
		{
			Description: "a tighter tolerance reveals the differences",
			Setup: func(data test.Data, _ test.Helpers) {
				saveRecords(data, "reference", referenceRecords)
				saveRecords(data, "candidate", reorderedRecords)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command(
					"diff-avros",
					"--tolerance",
					"one-decimal",
					data.Labels().Get("reference"),
					data.Labels().Get("candidate"),
				)
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains(`"iterable_item_added"`),
						expectContains(`"iterable_item_removed"`),
						expectNotContains("IDENTICAL"),
					),
				}
			},
		},
		{
			Description: "a regression is reported without failing",
			Setup: func(data test.Data, _ test.Helpers) {
				saveRecords(data, "reference", referenceRecords)
				saveRecords(data, "candidate", regressedRecords)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("diff-avros", data.Labels().Get("reference"), data.Labels().Get("candidate"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains(`"root[0]"`),
						expectContains("4.2"),
					),
				}
			},
		},
		{
			Description: "an unknown tolerance fails",
			Setup: func(data test.Data, _ test.Helpers) {
				saveRecords(data, "reference", referenceRecords)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command(
					"diff-avros",
					"--tolerance",
					"three-decimals",
					data.Labels().Get("reference"),
					data.Labels().Get("reference"),
				)
			},
			Expected: test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "a dump that is not an array of records fails",
			Setup: func(data test.Data, _ test.Helpers) {
				saveRecords(data, "reference", referenceRecords)
				saveRecords(data, "candidate", `{"site": "a"}`)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("diff-avros", data.Labels().Get("reference"), data.Labels().Get("candidate"))
			},
			Expected: test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
	}

	testCase.Run(t)
}

func TestDumpAvro(t *testing.T) {
	testCase := testutils.Setup(testutils.Avrocheck)

	testCase.SubTests = []*test.Case{
		{
			Description: "dump-avro without arguments fails",
			Command:     test.Command("dump-avro"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "dump-avro with both --local and a remote artifact fails",
			Command:     test.Command("dump-avro", "--local", "/tmp/x.avro", "client", "1-OVERALL.avro"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "dump-avro prints the records of a local file",
			Setup: func(data test.Data, _ test.Helpers) {
				saveRecords(data, "reference", referenceRecords)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("dump-avro", "--local", data.Labels().Get("reference"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains(`"site": "a"`),
						expectContains(`"lift": 1.52`),
					),
				}
			},
		},
	}

	testCase.Run(t)
}
