package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/PuerkitoBio/goquery"

	"github.com/Killavus/teamspeak-updater/internal/config"
	"github.com/Killavus/teamspeak-updater/internal/logger"
	"github.com/Killavus/teamspeak-updater/internal/target"
)

var (
	// ErrNoVersions is returned when the mirror listing contains no
	// parseable version links at all.
	ErrNoVersions = errors.New("no versions collected from the mirror listing")
	// errBadHTTPStatus is returned on any non-2xx response.
	errBadHTTPStatus = errors.New("unexpected http status")
)

// Client talks to the release mirror. It only knows two operations:
// scrape the listing for published versions and download one archive.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a mirror client using the timeout from the configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// LatestVersion fetches the mirror listing and returns the highest version
// linked from it. Anchor texts that do not parse as a semantic version are
// expected noise (parent directory links, readme files) and are skipped;
// only an entirely versionless listing is an error.
func (c *Client) LatestVersion(ctx context.Context, cfg *config.Config) (*semver.Version, error) {
	response, err := c.get(ctx, cfg.MirrorURL)
	if err != nil {
		return nil, fmt.Errorf("fetch mirror listing: %w", err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	doc, err := goquery.NewDocumentFromReader(response.Body)
	if err != nil {
		return nil, fmt.Errorf("parse mirror listing: %w", err)
	}

	latest := latestFromListing(doc)
	if latest == nil {
		return nil, ErrNoVersions
	}

	logger.InfoKV(ctx, "Determined latest published version", "version", latest.String())

	return latest, nil
}

// latestFromListing extracts every anchor text from the listing document,
// parses the version-shaped ones and returns the maximum, or nil when the
// document links no versions.
func latestFromListing(doc *goquery.Document) *semver.Version {
	var latest *semver.Version

	doc.Find("a").Each(func(_ int, link *goquery.Selection) {
		version, err := semver.StrictNewVersion(link.Text())
		if err != nil {
			return
		}

		if latest == nil || version.GreaterThan(latest) {
			latest = version
		}
	})

	return latest
}

// DownloadRelease streams the archive for the given version into a temporary
// file and returns it positioned at end-of-write. The caller owns the file
// and is responsible for removing it.
func (c *Client) DownloadRelease(
	ctx context.Context,
	cfg *config.Config,
	profile target.Profile,
	version *semver.Version,
) (*os.File, error) {
	archiveURL, err := archiveURL(cfg.MirrorURL, profile, version)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Downloading release archive", "url", archiveURL)

	response, err := c.get(ctx, archiveURL)
	if err != nil {
		return nil, fmt.Errorf("download release archive: %w", err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	archive, err := os.CreateTemp("", "teamspeak-archive-*")
	if err != nil {
		return nil, fmt.Errorf("create archive store: %w", err)
	}

	if _, err = io.Copy(archive, response.Body); err != nil {
		_ = archive.Close()
		_ = os.Remove(archive.Name())

		return nil, fmt.Errorf("stream release archive: %w", err)
	}

	return archive, nil
}

// archiveURL composes <mirror>/<version>/<filename> by joining path segments,
// so the result is well-formed regardless of trailing slashes in the mirror URL.
func archiveURL(mirrorURL string, profile target.Profile, version *semver.Version) (string, error) {
	base, err := url.Parse(mirrorURL)
	if err != nil {
		return "", fmt.Errorf("parse mirror URL: %w", err)
	}

	return base.JoinPath(version.String(), profile.ArchiveFilename(version)).String(), nil
}

// get performs a GET request and treats any non-2xx response as an error.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()

		return nil, fmt.Errorf("%w: %s, %s", errBadHTTPStatus, rawURL, response.Status)
	}

	return response, nil
}
