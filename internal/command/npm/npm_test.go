package npm_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/command/npm"
	"github.com/slok/taskmgr/internal/model"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestSourceGetCommands(t *testing.T) {
	tests := map[string]struct {
		files   map[string]string
		expCmds []command.Command
		expErr  bool
	}{
		"A project without package.json should not have commands.": {
			files:   map[string]string{},
			expCmds: []command.Command{},
		},
		"A package.json without scripts should only have the install command.": {
			files: map[string]string{"package.json": `{"name": "app"}`},
			expCmds: []command.Command{
				{Command: "npm", Args: []string{"install"}},
			},
		},
		"Scripts should be returned sorted after the install command.": {
			files: map[string]string{"package.json": `{"scripts": {"test": "jest", "build": "tsc", "start": "node ."}}`},
			expCmds: []command.Command{
				{Command: "npm", Args: []string{"install"}},
				{Command: "npm", Args: []string{"run", "build"}},
				{Command: "npm", Args: []string{"start"}},
				{Command: "npm", Args: []string{"run", "test"}},
			},
		},
		"The package manager should be detected from the lock file.": {
			files: map[string]string{
				"package.json": `{"scripts": {"start": "node .", "dev": "vite"}}`,
				"yarn.lock":    "",
			},
			expCmds: []command.Command{
				{Command: "yarn", Args: []string{"install"}},
				{Command: "yarn", Args: []string{"run", "dev"}},
				{Command: "yarn", Args: []string{"run", "start"}},
			},
		},
		"An invalid package.json should fail.": {
			files:  map[string]string{"package.json": `{"scripts": [}`},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			dir := t.TempDir()
			writeFiles(t, dir, test.files)

			s, err := npm.NewSource(npm.SourceConfig{})
			require.NoError(err)

			cmds, err := s.GetCommands(context.TODO(), &model.Project{ID: "p1", Name: "p1", Path: dir}, false)

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expCmds, cmds)
			}
		})
	}
}

func TestSourceGetCommandsCache(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"package.json": `{"scripts": {"build": "tsc"}}`})
	p := &model.Project{ID: "p1", Name: "p1", Path: dir}

	s, err := npm.NewSource(npm.SourceConfig{})
	require.NoError(err)
	assert.Equal("NPM", s.Title())

	cmds, err := s.GetCommands(context.TODO(), p, true)
	require.NoError(err)
	assert.Len(cmds, 2)

	writeFiles(t, dir, map[string]string{"package.json": `{"scripts": {"build": "tsc", "lint": "eslint"}}`})

	cmds, err = s.GetCommands(context.TODO(), p, true)
	require.NoError(err)
	assert.Len(cmds, 2, "cached commands should be returned")

	cmds, err = s.GetCommands(context.TODO(), p, false)
	require.NoError(err)
	assert.Len(cmds, 3, "commands should be reloaded without cache")
}
