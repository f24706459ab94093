package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"swipestats/config"
	"swipestats/internal/logger"
)

const (
	blobUserAgent   = "SwipeStats/1.0 (Export Ingestion)"
	maxExportSizeMB = 64
)

// BlobService fetches raw export documents from blob storage. Exports are
// anonymized client-side before upload, so the body is treated as opaque
// JSON.
type BlobService struct {
	httpClient *http.Client
	log        logger.Logger
}

func NewBlobService(cfg config.Config) *BlobService {
	timeout := time.Duration(cfg.BlobFetchTimeoutSec) * time.Second

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:    10,
			IdleConnTimeout: 90 * time.Second,
			MaxConnsPerHost: 10,
		},
	}

	return &BlobService{
		httpClient: httpClient,
		log:        logger.New("blobService"),
	}
}

// FetchJSON downloads the export at the given URL and returns its raw bytes.
// Network and not-found failures propagate as ingestion failures.
func (bs *BlobService) FetchJSON(ctx context.Context, url string) ([]byte, error) {
	log := bs.log.Function("FetchJSON")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, log.Err("failed to build blob request", err, "url", url)
	}
	req.Header.Set("User-Agent", blobUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := bs.httpClient.Do(req)
	if err != nil {
		return nil, log.Err("failed to fetch export blob", err, "url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, log.Err(
			"unexpected status fetching export blob",
			fmt.Errorf("status %d", resp.StatusCode),
			"url", url,
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxExportSizeMB<<20))
	if err != nil {
		return nil, log.Err("failed to read export blob body", err, "url", url)
	}

	log.Info("Fetched export blob", "url", url, "bytes", len(body))
	return body, nil
}
