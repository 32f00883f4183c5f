package connectors

import (
	"fmt"

	"github.com/custodia-labs/litrag/internal/connectors/filesystem"
	"github.com/custodia-labs/litrag/internal/connectors/pubmed"
	"github.com/custodia-labs/litrag/internal/connectors/semanticscholar"
	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/retry"
)

// New builds the connector named by settings.Connector.
// An empty connector selects Semantic Scholar.
func New(settings domain.AcquisitionSettings, policy retry.Policy) (driven.Connector, error) {
	switch settings.Connector {
	case domain.ConnectorSemanticScholar, "":
		return semanticscholar.New(semanticscholar.ConfigFromSettings(settings, policy)), nil
	case domain.ConnectorPubMed:
		return pubmed.New(pubmed.ConfigFromSettings(settings, policy)), nil
	case domain.ConnectorFilesystem:
		if settings.Directory == "" {
			return nil, fmt.Errorf("%w: filesystem connector needs a directory", domain.ErrInvalidArgument)
		}
		return filesystem.New(settings.Directory), nil
	default:
		return nil, fmt.Errorf("%w: connector %q", domain.ErrUnsupportedType, settings.Connector)
	}
}

// Available returns every connector type New accepts.
func Available() []domain.ConnectorType {
	return []domain.ConnectorType{
		domain.ConnectorSemanticScholar,
		domain.ConnectorPubMed,
		domain.ConnectorFilesystem,
	}
}
