package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/streamgraph/pkg/version"
)

func TestStringNamesBinary(t *testing.T) {
	version.InitBinaryVersion()

	s := version.String()
	assert.Contains(t, s, "streamgraph ")
	assert.Contains(t, s, version.Version)
	assert.Contains(t, s, "commit: "+version.Commit)
}
