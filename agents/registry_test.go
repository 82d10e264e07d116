package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/remedy/framework"
)

type stubSpecialist struct {
	name   string
	types  map[framework.IssueType]bool
	handle func(framework.Issue) (float64, error)
	fix    func(context.Context, framework.Issue) (*framework.FixResult, error)
}

func (s *stubSpecialist) Name() string { return s.name }

func (s *stubSpecialist) SupportedTypes() map[framework.IssueType]bool { return s.types }

func (s *stubSpecialist) CanHandle(issue framework.Issue) (float64, error) {
	if s.handle != nil {
		return s.handle(issue)
	}
	return 0.5, nil
}

func (s *stubSpecialist) AnalyzeAndFix(ctx context.Context, issue framework.Issue) (*framework.FixResult, error) {
	if s.fix != nil {
		return s.fix(ctx, issue)
	}
	return framework.FixSuccess(0.5, "stub fix", issue.FilePath), nil
}

func stubConstructor(name string, types ...framework.IssueType) Constructor {
	supported := make(map[framework.IssueType]bool, len(types))
	for _, t := range types {
		supported[t] = true
	}
	return func(ctx *framework.AgentContext) framework.SubAgent {
		return &stubSpecialist{name: name, types: supported}
	}
}

func TestCreateAllEmptyRegistry(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.CreateAll(framework.NewAgentContext(t.TempDir()))
	require.ErrorIs(t, err, ErrEmptyRegistry)
}

func TestRegisterLastWinsKeepsPosition(t *testing.T) {
	reg := NewRegistry()
	reg.Register("alpha", stubConstructor("alpha-v1", framework.IssueStyle))
	reg.Register("beta", stubConstructor("beta", framework.IssueStyle))
	reg.Register("alpha", stubConstructor("alpha-v2", framework.IssueStyle))

	assert.Equal(t, []string{"alpha", "beta"}, reg.Names())

	specialists, err := reg.CreateAll(framework.NewAgentContext(t.TempDir()))
	require.NoError(t, err)
	require.Len(t, specialists, 2)
	assert.Equal(t, "alpha-v2", specialists[0].Name())
	assert.Equal(t, "beta", specialists[1].Name())
}

func TestDefaultRegistryShipsSpecialists(t *testing.T) {
	reg := DefaultRegistry()
	assert.Equal(t, []string{"style", "docs", "security", "architect"}, reg.Names())
}

// Every hint table entry must point at a registered specialist that really
// declares the hinted issue type.
func TestPreferredSpecialistsMatchCapabilities(t *testing.T) {
	specialists, err := DefaultRegistry().CreateAll(framework.NewAgentContext(t.TempDir()))
	require.NoError(t, err)

	byName := make(map[string]framework.SubAgent, len(specialists))
	for _, s := range specialists {
		byName[s.Name()] = s
	}
	for issueType, preferred := range PreferredSpecialists {
		for _, name := range preferred {
			specialist, ok := byName[name]
			require.True(t, ok, "hint for %s names unregistered specialist %s", issueType, name)
			assert.True(t, specialist.SupportedTypes()[issueType],
				"%s does not declare support for %s", name, issueType)
		}
	}
}
