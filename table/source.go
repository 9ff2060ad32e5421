package table

import (
	"bytes"
	"context"
	"strings"

	"github.com/teranos/graphscope/errors"
	"github.com/teranos/graphscope/internal/httpclient"
)

// IsRemote reports whether source names an http(s) URL rather than a file
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads a table from a local CSV path or, for http(s) URLs, through client
func Load(ctx context.Context, source string, client *httpclient.SaferClient) (*Table, error) {
	if !IsRemote(source) {
		return ReadCSVFile(source)
	}
	if client == nil {
		return nil, errors.Newf("no HTTP client configured to fetch %s", source)
	}

	body, err := client.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	t, err := ReadCSV(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", source)
	}
	return t, nil
}
