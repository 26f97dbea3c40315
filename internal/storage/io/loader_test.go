package io

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/phase"
)

type expStep struct {
	id      string
	desc    string
	order   int
	command command.Command
}

type expPhase struct {
	desc    string
	checked bool
	steps   []expStep
}

func TestWorkflowYAMLRepository_GetWorkflow(t *testing.T) {
	tests := map[string]struct {
		fs        fstest.MapFS
		path      string
		expName   string
		expPhases []expPhase
		expErr    bool
		errMsg    string
	}{
		"Valid workflow should load successfully": {
			fs: fstest.MapFS{
				"release.yaml": &fstest.MapFile{
					Data: []byte(`name: release
phases:
  - description: Build
    steps:
      - id: install
        command: npm
        args: [install]
      - id: build
        description: Build the bundle
        command: npm
        args: [run, build]
  - description: Lint
    checked: false
    steps:
      - id: eslint
        command: npx
        args: [eslint, .]
`),
				},
			},
			path:    "release.yaml",
			expName: "release",
			expPhases: []expPhase{
				{
					desc:    "Build",
					checked: true,
					steps: []expStep{
						{id: "install", order: 1, command: command.Command{Command: "npm", Args: []string{"install"}}},
						{id: "build", desc: "Build the bundle", order: 2, command: command.Command{Command: "npm", Args: []string{"run", "build"}}},
					},
				},
				{
					desc:    "Lint",
					checked: false,
					steps: []expStep{
						{id: "eslint", order: 1, command: command.Command{Command: "npx", Args: []string{"eslint", "."}}},
					},
				},
			},
		},
		"Explicit orders and after should be applied": {
			fs: fstest.MapFS{
				"wf.yaml": &fstest.MapFile{
					Data: []byte(`name: ordered
phases:
  - description: Run
    steps:
      - id: serve
        command: npm
        args: [start]
        order: 1
      - id: open
        command: open
        order: 2
      - id: install
        command: npm
        args: [install]
        order: 5
      - id: clean
        command: rm
        args: [-rf, dist]
        after: serve
`),
				},
			},
			path:    "wf.yaml",
			expName: "ordered",
			expPhases: []expPhase{
				{
					desc:    "Run",
					checked: true,
					steps: []expStep{
						{id: "serve", order: 1, command: command.Command{Command: "npm", Args: []string{"start"}}},
						{id: "clean", order: 2, command: command.Command{Command: "rm", Args: []string{"-rf", "dist"}}},
						{id: "open", order: 3, command: command.Command{Command: "open"}},
						{id: "install", order: 6, command: command.Command{Command: "npm", Args: []string{"install"}}},
					},
				},
			},
		},
		"Missing file should fail": {
			fs:     fstest.MapFS{},
			path:   "missing.yaml",
			expErr: true,
			errMsg: "reading workflow file",
		},
		"Invalid YAML should fail": {
			fs: fstest.MapFS{
				"bad.yaml": &fstest.MapFile{Data: []byte("name: [")},
			},
			path:   "bad.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},
		"Missing name should fail": {
			fs: fstest.MapFS{
				"wf.yaml": &fstest.MapFile{Data: []byte(`phases:
  - description: Build
`)},
			},
			path:   "wf.yaml",
			expErr: true,
			errMsg: "name is required",
		},
		"Missing phases should fail": {
			fs: fstest.MapFS{
				"wf.yaml": &fstest.MapFile{Data: []byte("name: x\n")},
			},
			path:   "wf.yaml",
			expErr: true,
			errMsg: "at least one phase is required",
		},
		"Step without command should fail": {
			fs: fstest.MapFS{
				"wf.yaml": &fstest.MapFile{Data: []byte(`name: x
phases:
  - description: Build
    steps:
      - id: install
`)},
			},
			path:   "wf.yaml",
			expErr: true,
			errMsg: "command is required",
		},
		"Duplicated step should fail": {
			fs: fstest.MapFS{
				"wf.yaml": &fstest.MapFile{Data: []byte(`name: x
phases:
  - description: Build
    steps:
      - id: install
        command: npm
      - id: install
        command: yarn
`)},
			},
			path:   "wf.yaml",
			expErr: true,
			errMsg: "step already exists",
		},
		"After a missing step should fail": {
			fs: fstest.MapFS{
				"wf.yaml": &fstest.MapFile{Data: []byte(`name: x
phases:
  - description: Build
    steps:
      - id: install
        command: npm
        after: missing
`)},
			},
			path:   "wf.yaml",
			expErr: true,
			errMsg: "step not found",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := NewWorkflowYAMLRepository(test.fs)
			wf, err := repo.GetWorkflow(context.Background(), test.path)

			if test.expErr {
				require.Error(err)
				assert.Contains(err.Error(), test.errMsg)
				return
			}
			require.NoError(err)

			assert.Equal(test.expName, wf.Name)
			require.Len(wf.Phases, len(test.expPhases))
			for i, exp := range test.expPhases {
				assert.Equal(exp.desc, wf.Phases[i].Description)
				assert.Equal(exp.checked, wf.Phases[i].Checked)
				assert.Equal(exp.steps, toExpSteps(wf.Phases[i].Sort()))
			}
		})
	}
}

func toExpSteps(steps []*phase.Step) []expStep {
	res := make([]expStep, 0, len(steps))
	for _, s := range steps {
		res = append(res, expStep{id: s.Identifier, desc: s.Description, order: s.Order, command: s.Payload.(command.Command)})
	}
	return res
}
