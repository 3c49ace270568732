package persistence

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMigrator struct {
	upErr      error
	versionErr error
	closed     int
}

func (f *fakeMigrator) Up() error { return f.upErr }

func (f *fakeMigrator) Version() (uint, bool, error) { return 1, false, f.versionErr }

func (f *fakeMigrator) Close() (error, error) {
	f.closed++
	return nil, nil
}

func TestApplyMigrationsAlwaysCloses(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		m       *fakeMigrator
		wantErr error
	}{
		{name: "applied", m: &fakeMigrator{}},
		{name: "already current", m: &fakeMigrator{upErr: migrate.ErrNoChange}},
		{name: "empty schema", m: &fakeMigrator{versionErr: migrate.ErrNilVersion}},
		{name: "up fails", m: &fakeMigrator{upErr: boom}, wantErr: boom},
		{name: "version fails", m: &fakeMigrator{versionErr: boom}, wantErr: boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := applyMigrations(tt.m, zap.NewNop())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, 1, tt.m.closed)
		})
	}
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	require.NoError(t, RunMigrations(nil, zap.NewNop()))
}
