// Package export persists result artifacts to the S3 archive bucket so a
// run's CSV can be shared after the cache entry expires.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mtc-analytics/patlens/pkg/clients"
	"github.com/mtc-analytics/patlens/pkg/common"
	"github.com/mtc-analytics/patlens/pkg/presentation"
	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/rs/zerolog/log"
)

// Artifact points at a stored export object.
type Artifact struct {
	Id          string `json:"id"`
	Key         string `json:"key"`
	Filename    string `json:"filename"`
	DownloadURL string `json:"download_url,omitempty"`
}

// Archive stores CSV exports. A nil *Archive is a valid disabled archive,
// so callers skip the nil checks at every site.
type Archive struct {
	store *clients.StorageClient
}

// NewArchive wraps the storage client. Pass nil to get a disabled archive.
func NewArchive(store *clients.StorageClient) *Archive {
	if store == nil {
		return nil
	}
	return &Archive{store: store}
}

// Enabled reports whether exports are persisted anywhere.
func (a *Archive) Enabled() bool {
	return a != nil
}

// SaveCSV renders the table to CSV and uploads it under the query's export
// prefix. The artifact id is random so repeated exports never collide.
func (a *Archive) SaveCSV(ctx context.Context, def *types.QueryDefinition, table *types.ResultTable) (*Artifact, error) {
	if !a.Enabled() {
		return nil, fmt.Errorf("export archive is not configured")
	}

	var buf bytes.Buffer
	if err := presentation.WriteCSV(&buf, table); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}

	id := uuid.New().String()
	key := common.Keys.ExportCSV(def.Id, id)
	if err := a.store.Upload(ctx, key, "text/csv", buf.Bytes()); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	artifact := &Artifact{
		Id:       id,
		Key:      key,
		Filename: presentation.CSVFilename(def.Id, def.Title),
	}

	if url, err := a.store.PresignDownload(ctx, key, clients.PresignDownloadExpiry); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("presign export download failed")
	} else {
		artifact.DownloadURL = url
	}

	log.Info().Str("query_id", def.Id).Str("key", key).Int("bytes", buf.Len()).Msg("export saved")
	return artifact, nil
}
