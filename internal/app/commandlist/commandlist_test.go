package commandlist_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskmgr/internal/app/commandlist"
	"github.com/slok/taskmgr/internal/command"
	"github.com/slok/taskmgr/internal/command/commandmock"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config commandlist.ServiceConfig
		expErr bool
	}{
		"valid config": {
			config: commandlist.ServiceConfig{
				Repository: &storagemock.MockRepository{},
				Sources:    []command.Source{&commandmock.MockSource{}},
			},
		},
		"missing repository": {
			config: commandlist.ServiceConfig{Sources: []command.Source{&commandmock.MockSource{}}},
			expErr: true,
		},
		"missing sources": {
			config: commandlist.ServiceConfig{Repository: &storagemock.MockRepository{}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := commandlist.NewService(test.config)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	project := &model.Project{ID: "id1", Name: "web", Path: "/src/web"}
	cmds := []command.Command{
		{Command: "npm", Args: []string{"install"}},
		{Command: "npm", Args: []string{"start"}},
	}

	tests := map[string]struct {
		mockRepo      func(m *storagemock.MockRepository)
		mockSource    func(m *commandmock.MockSource)
		req           commandlist.Request
		expCategories []command.Category
		expErr        bool
	}{
		"commands of a source should be listed using the cache": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("GetProjectByName", mock.Anything, "web").Once().Return(project, nil)
			},
			mockSource: func(m *commandmock.MockSource) {
				m.On("Title").Return("NPM")
				m.On("GetCommands", mock.Anything, project, true).Once().Return(cmds, nil)
			},
			req:           commandlist.Request{NameOrID: "web"},
			expCategories: []command.Category{{Title: "NPM", Commands: cmds}},
		},
		"refresh should skip the cache": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("GetProjectByName", mock.Anything, "web").Once().Return(project, nil)
			},
			mockSource: func(m *commandmock.MockSource) {
				m.On("Title").Return("NPM")
				m.On("GetCommands", mock.Anything, project, false).Once().Return(cmds, nil)
			},
			req:           commandlist.Request{NameOrID: "web", Refresh: true},
			expCategories: []command.Category{{Title: "NPM", Commands: cmds}},
		},
		"a source without commands should explain it": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("GetProjectByName", mock.Anything, "web").Once().Return(project, nil)
			},
			mockSource: func(m *commandmock.MockSource) {
				m.On("Title").Return("NPM")
				m.On("GetCommands", mock.Anything, project, true).Once().Return([]command.Command{}, nil)
			},
			req:           commandlist.Request{NameOrID: "web"},
			expCategories: []command.Category{{Title: "NPM", Error: "Did not find any tasks"}},
		},
		"a failing source should explain it": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("GetProjectByName", mock.Anything, "web").Once().Return(project, nil)
			},
			mockSource: func(m *commandmock.MockSource) {
				m.On("Title").Return("NPM")
				m.On("GetCommands", mock.Anything, project, true).Once().Return(nil, fmt.Errorf("bad package.json"))
			},
			req: commandlist.Request{NameOrID: "web"},
			expCategories: []command.Category{{
				Title: "NPM",
				Error: "Failed to load tasks for this project (bad package.json). Did you install the npm modules?",
			}},
		},
		"a missing project should fail": {
			mockRepo: func(m *storagemock.MockRepository) {
				m.On("GetProjectByName", mock.Anything, "missing").Once().Return(nil, model.ErrNotFound)
			},
			mockSource: func(m *commandmock.MockSource) {},
			req:        commandlist.Request{NameOrID: "missing"},
			expErr:     true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mRepo := storagemock.NewMockRepository(t)
			mSource := commandmock.NewMockSource(t)
			test.mockRepo(mRepo)
			test.mockSource(mSource)

			svc, err := commandlist.NewService(commandlist.ServiceConfig{
				Repository: mRepo,
				Sources:    []command.Source{mSource},
			})
			require.NoError(err)

			res, err := svc.Run(context.TODO(), test.req)
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)
			assert.Equal(project, res.Project)
			assert.Equal(test.expCategories, res.Categories)
		})
	}
}
