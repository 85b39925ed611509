package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/arthur-debert/busy/pkg/errors"
	"github.com/arthur-debert/busy/pkg/ui"
)

const statusTimeout = 5 * time.Second

// fetchStatus reads /loaders from the metrics server at addr
func fetchStatus(ctx context.Context, addr string) (ui.Status, error) {
	var status ui.Status

	url := addr
	if !strings.Contains(url, "://") {
		url = "http://" + url
	}
	url = strings.TrimSuffix(url, "/") + "/loaders"

	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return status, errors.Wrapf(err, errors.ErrInvalidInput, "invalid address %s", addr)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return status, errors.Wrapf(err, errors.ErrServe, "failed to reach %s", addr).
			WithDetail("url", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return status, errors.Newf(errors.ErrServe, "%s returned %s", url, resp.Status).
			WithDetail("url", url)
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, errors.Wrapf(err, errors.ErrServe, "invalid response from %s", url)
	}
	if status.Loaders == nil {
		status.Loaders = map[string]int{}
	}
	return status, nil
}
