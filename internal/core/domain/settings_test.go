package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings_Valid(t *testing.T) {
	s := DefaultSettings()

	assert.NoError(t, s.Validate())
	assert.Equal(t, DefaultBackupDir, s.Backup.Dir)
	assert.Equal(t, DefaultRegenTimeout, s.Regenerate.Timeout)
	assert.Equal(t, 1, s.Batch.Workers)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"empty root", func(s *Settings) { s.Corpus.Root = "" }},
		{"empty backup dir", func(s *Settings) { s.Backup.Dir = "" }},
		{"enabled without command", func(s *Settings) {
			s.Regenerate.Enabled = true
			s.Regenerate.Command = ""
		}},
		{"zero timeout", func(s *Settings) { s.Regenerate.Timeout = 0 }},
		{"negative timeout", func(s *Settings) { s.Regenerate.Timeout = -time.Second }},
		{"zero concurrency", func(s *Settings) { s.Regenerate.MaxConcurrent = 0 }},
		{"zero workers", func(s *Settings) { s.Batch.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)

			err := s.Validate()

			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}
