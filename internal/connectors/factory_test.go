package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/retry"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		connector domain.ConnectorType
		directory string
		wantType  domain.ConnectorType
		wantErr   error
	}{
		{name: "default is semantic scholar", connector: "", wantType: domain.ConnectorSemanticScholar},
		{name: "semantic scholar", connector: domain.ConnectorSemanticScholar, wantType: domain.ConnectorSemanticScholar},
		{name: "pubmed", connector: domain.ConnectorPubMed, wantType: domain.ConnectorPubMed},
		{name: "filesystem", connector: domain.ConnectorFilesystem, directory: "/tmp", wantType: domain.ConnectorFilesystem},
		{name: "filesystem without directory", connector: domain.ConnectorFilesystem, wantErr: domain.ErrInvalidArgument},
		{name: "unknown", connector: "arxiv", wantErr: domain.ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := domain.DefaultAppSettings().Acquisition
			settings.Connector = tt.connector
			settings.Directory = tt.directory

			c, err := New(settings, retry.DefaultPolicy())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, c.Type())
			assert.NoError(t, c.Close())
		})
	}
}

func TestAvailable(t *testing.T) {
	for _, ct := range Available() {
		assert.True(t, ct.IsValid(), ct)
	}
}
