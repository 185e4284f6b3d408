package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssetTransitions(t *testing.T) {
	allowed := [][2]string{
		{"draft", "ready"},
		{"draft", "declined"},
		{"ready", "declined"},
		{"declined", "draft"},
	}
	for _, tr := range allowed {
		assert.True(t, assetTransitions[tr[0]][tr[1]], "%s -> %s should be allowed", tr[0], tr[1])
	}

	denied := [][2]string{
		{"ready", "draft"},
		{"declined", "ready"},
		{"draft", "draft"},
		{"ready", "published"},
	}
	for _, tr := range denied {
		assert.False(t, assetTransitions[tr[0]][tr[1]], "%s -> %s should be denied", tr[0], tr[1])
	}
}
