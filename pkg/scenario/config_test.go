// Tests for scenario parsing and validation
package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Basic(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
trace:
  - name: handle_request
    duration: 2ms
    children:
      - ai: true
        operation: chat
        attributes:
          gen_ai.request.model: gpt-4
`))
	require.NoError(t, err)
	require.Len(t, cfg.Trace, 1)

	root := cfg.Trace[0]
	assert.Equal(t, "handle_request", root.Name)
	assert.False(t, root.AI)
	require.Len(t, root.Children, 1)

	child := root.Children[0]
	assert.True(t, child.AI)
	assert.Equal(t, "chat", child.Operation)
	assert.Equal(t, "gpt-4", child.Attributes["gen_ai.request.model"])
}

func TestParse_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("trace: [broken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing scenario")
}

func TestValidate_EmptyTrace(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("trace: []"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one root span")
}

func TestValidate_MissingName(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`
trace:
  - name: root
    children:
      - duration: 5ms
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must set name or operation")
}

func TestValidate_BadDuration(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`
trace:
  - name: root
    duration: fast
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestValidate_OperationRequiresAI(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`
trace:
  - operation: chat
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not marked ai")
}

func TestDefault_ParsesAndValidates(t *testing.T) {
	t.Parallel()

	cfg, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Trace)
	assert.Equal(t, "handle_request", cfg.Trace[0].Name)
}

func TestSpanConfig_Label(t *testing.T) {
	t.Parallel()

	named := SpanConfig{Name: "planner", Operation: "invoke_agent"}
	assert.Equal(t, "planner", named.label())

	unnamed := SpanConfig{Operation: "chat"}
	assert.Equal(t, "chat", unnamed.label())
}
