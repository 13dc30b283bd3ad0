package stations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/travigo/countdown/pkg/transport"
)

const (
	DefaultStationsURL = "https://github.com/KrisztianOlah/london-sail/raw/devel/stations.csv"

	maxRedirects = 10
)

type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("download %s returned HTTP %d", e.URL, e.StatusCode)
}

// Download fetches sourceURL into path. Every 3xx response is followed once by
// re-issuing the GET at its resolved Location; any status other than 2xx or 3xx
// abandons the download without retrying.
func Download(ctx context.Context, client transport.Transport, sourceURL string, path string) error {
	requestURL := sourceURL

	for hops := 0; ; hops++ {
		resp, err := client.Get(ctx, requestURL)
		if err != nil {
			return fmt.Errorf("download %s: %w", requestURL, err)
		}

		log.Debug().Str("url", requestURL).Int("status", resp.StatusCode).Msg("Stations download response")

		switch {
		case resp.IsRedirect():
			if hops >= maxRedirects {
				return fmt.Errorf("download %s: too many redirects", sourceURL)
			}

			target, err := resp.RedirectTarget()
			if err != nil {
				return fmt.Errorf("download %s: %w", requestURL, err)
			}

			log.Info().Str("from", requestURL).Str("to", target.String()).Msg("Redirecting stations download")
			requestURL = target.String()
		case resp.IsSuccess():
			return writeFile(path, resp.Body)
		default:
			return &StatusError{URL: requestURL, StatusCode: resp.StatusCode}
		}
	}
}

func writeFile(path string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create stations directory: %w", err)
	}

	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// FileExists is true when the cached station CSV is already on disk
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
