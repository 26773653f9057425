package pipeline

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"strideflow/apps/backend/features/project"
	"strideflow/apps/backend/features/task"
	"strideflow/apps/backend/features/team"
	openai "strideflow/apps/backend/internal/adapter/openai"
)

type mockCompleter struct{ mock.Mock }

func (m *mockCompleter) Chat(ctx context.Context, req openai.Request, result any) error {
	args := m.Called(ctx, req, result)
	return args.Error(0)
}

type mockProjectStore struct{ mock.Mock }

func (m *mockProjectStore) ListWithSections(ctx context.Context, orgID string) ([]project.Project, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]project.Project), args.Error(1)
}

func (m *mockProjectStore) FindByName(ctx context.Context, orgID, name string) (*project.Project, error) {
	args := m.Called(ctx, orgID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *mockProjectStore) Save(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type mockTaskStore struct{ mock.Mock }

func (m *mockTaskStore) ListRecent(ctx context.Context, orgID string, since time.Time) ([]task.RecentTask, error) {
	args := m.Called(ctx, orgID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.RecentTask), args.Error(1)
}

func (m *mockTaskStore) Save(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTaskStore) SaveAssignment(ctx context.Context, a *task.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockTaskStore) SaveActivity(ctx context.Context, e *task.ActivityLogEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type mockTeamStore struct{ mock.Mock }

func (m *mockTeamStore) ListMembers(ctx context.Context, orgID string) ([]team.Member, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]team.Member), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(topic string, body []byte) error {
	args := m.Called(topic, body)
	return args.Error(0)
}
