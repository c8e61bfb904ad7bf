package main

import (
	"context"
	"os"
	"strings"

	"github.com/theoremus-urban-solutions/route-follower/gtfsrt"
)

// fetcher reads GTFS-RT feeds from URLs or local files.
type fetcher struct {
	client *gtfsrt.Client
}

func newFetcher(client *gtfsrt.Client) *fetcher {
	return &fetcher{client: client}
}

// fetch returns raw protobuf bytes. Anything that is not an http(s) URL is read as a file.
func (f *fetcher) fetch(ctx context.Context, urlOrPath string) ([]byte, error) {
	if urlOrPath == "" {
		return nil, nil
	}
	if !strings.HasPrefix(urlOrPath, "http://") && !strings.HasPrefix(urlOrPath, "https://") {
		return os.ReadFile(urlOrPath)
	}
	return f.client.Fetch(ctx, urlOrPath)
}
