package main

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"go.uber.org/zap"
)

func TestValidateCompareFlags(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		auto    bool
		wantErr bool
	}{
		{"model only", "text", false, false},
		{"auto only", "", true, false},
		{"both", "text", true, true},
		{"neither", "", false, true},
		{"unknown model", "audio", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCompareFlags(tt.model, tt.auto)
			if tt.wantErr {
				assert.True(t, errors.Is(err, models.ErrUsage), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDuplicateFlags(t *testing.T) {
	assert.NoError(t, validateDuplicateFlags(""))
	assert.NoError(t, validateDuplicateFlags("haiku"))
	assert.ErrorIs(t, validateDuplicateFlags("gpt"), models.ErrUsage)
}

func TestCollectHashes(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/abc.txt", []byte("abc"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/data/.git/config", []byte("x"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/data/reports/tracker_state.json", []byte("{}"), 0644))

	hashes, err := collectHashes(fs, "/data", []string{".git"}, []string{"/data/reports"}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, hashes, 1)

	assert.Equal(t, "/data/abc.txt", hashes[0].Path)
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", hashes[0].MD5)
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", hashes[0].SHA1)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hashes[0].SHA256)
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░", progressBar(0, 0, 4))
	assert.Equal(t, "██░░", progressBar(1, 2, 4))
	assert.Equal(t, "████", progressBar(3, 3, 4))
}
