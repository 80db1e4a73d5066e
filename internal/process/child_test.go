package process

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsZeroOnSuccess(t *testing.T) {
	c := New(context.Background(), []string{"/bin/true"}, hclog.NewNullLogger())
	code, elapsed, err := c.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.GreaterOrEqual(t, elapsed.Seconds(), 0.0)
}

func TestRunReturnsNonzeroExitCode(t *testing.T) {
	c := New(context.Background(), []string{"/bin/sh", "-c", "exit 7"}, hclog.NewNullLogger())
	code, _, err := c.Run()
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestRunReportsErrorWhenBinaryMissing(t *testing.T) {
	c := New(context.Background(), []string{"/no/such/binary-fcompile-test"}, hclog.NewNullLogger())
	_, _, err := c.Run()
	assert.Error(t, err)
}

func TestLabelJoinsArgs(t *testing.T) {
	c := New(context.Background(), []string{"/bin/true", "a", "b"}, hclog.NewNullLogger())
	assert.Equal(t, "/bin/true a b", c.Label())
}
