package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpFilesOrdersAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_create_onboarding_applications.up.sql": {Data: []byte("--")},
		"0001_create_users.up.sql":                   {Data: []byte("--")},
		"0001_create_users.down.sql":                 {Data: []byte("--")},
		"embed.go":                                   {Data: []byte("package migrations")},
		"archive/0000_legacy.up.sql":                 {Data: []byte("--")},
	}

	files, err := UpFiles(fsys)

	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_users.up.sql", "0002_create_onboarding_applications.up.sql"}, files)
}
