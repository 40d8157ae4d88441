package zookeeper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredecessor(t *testing.T) {
	children := []string{
		"_c_bbb-lock-0000000003",
		"_c_aaa-lock-0000000001",
		"_c_ccc-lock-0000000002",
	}

	_, first, err := predecessor(children, "_c_aaa-lock-0000000001")
	require.NoError(t, err)
	assert.True(t, first)

	prev, first, err := predecessor(children, "_c_bbb-lock-0000000003")
	require.NoError(t, err)
	assert.False(t, first)
	assert.Equal(t, "_c_ccc-lock-0000000002", prev)

	_, _, err = predecessor(children, "_c_ddd-lock-0000000009")
	assert.Error(t, err)
}

func TestConnectWithoutServers(t *testing.T) {
	_, err := Connect(nil, 0)
	assert.Error(t, err)
}
