package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobotIDFromTopic(t *testing.T) {
	id, err := robotIDFromTopic("fleet/v1/robots/42/battery")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestRobotIDFromTopicRejectsMalformed(t *testing.T) {
	cases := []string{
		"fleet/v1/robots/battery",
		"fleet/v1/robots/abc/battery",
		"fleet/v1/robots/42/battery/extra",
		"",
	}
	for _, topic := range cases {
		_, err := robotIDFromTopic(topic)
		assert.Error(t, err, "topic %q", topic)
	}
}
