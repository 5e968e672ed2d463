package partselect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"appliancebot/configs"
	"appliancebot/internal/domain"
	"appliancebot/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure FetcherAdapter implements CatalogFetcher
var _ output.CatalogFetcher = (*FetcherAdapter)(nil)

// errPageNotFound marks a catalog page that does not exist (unknown model).
// Distinct from fetch failures: an unknown model is a not-found outcome.
var errPageNotFound = errors.New("catalog page not found")

// pageLoader retrieves one catalog page as HTML. Two implementations:
// plain HTTP, and a scripted-browser loader for pages that need script
// execution, selected by the crawler.headless configuration.
type pageLoader interface {
	Load(ctx context.Context, pageURL string) (string, error)
}

// FetcherAdapter struct - Output adapter performing live lookups against
// the PartSelect catalog and parsing the markup into LookupResults.
type FetcherAdapter struct {
	baseURL string
	loader  pageLoader
}

// NewFetcherAdapter func - Creates new catalog fetcher adapter
func NewFetcherAdapter(config configs.Crawler) *FetcherAdapter {
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.partselect.com"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if config.Timeout <= 0 {
		timeout = 20 * time.Second
	}

	var loader pageLoader
	if config.Headless {
		loader = newBrowserLoader(timeout)
		logrus.Infof("Catalog fetcher initialized in headless-browser mode, base URL: %s", baseURL)
	} else {
		loader = newHTTPLoader(timeout, config.UserAgent)
		logrus.Infof("Catalog fetcher initialized in plain-HTTP mode, base URL: %s", baseURL)
	}

	return &FetcherAdapter{baseURL: baseURL, loader: loader}
}

// newFetcherWithLoader builds a fetcher around an explicit loader,
// used by tests.
func newFetcherWithLoader(baseURL string, loader pageLoader) *FetcherAdapter {
	return &FetcherAdapter{baseURL: strings.TrimSuffix(baseURL, "/"), loader: loader}
}

// Fetch retrieves and parses one catalog page for the descriptor. Zero
// matching records yield ResultNotFound with a nil error; network, timeout
// and parse failures return wrapped domain errors.
func (f *FetcherAdapter) Fetch(ctx context.Context, descriptor domain.QueryDescriptor) (*domain.LookupResult, error) {
	d := descriptor.Normalize()
	pageURL := f.urlFor(d)
	logrus.Infof("Fetching catalog page: %s", pageURL)

	markup, err := f.loader.Load(ctx, pageURL)
	if err != nil {
		if errors.Is(err, errPageNotFound) {
			return &domain.LookupResult{Kind: domain.ResultNotFound, FetchedAt: time.Now()}, nil
		}
		return nil, err
	}

	result, err := f.parse(d, markup)
	if err != nil {
		return nil, err
	}
	result.FetchedAt = time.Now()
	return result, nil
}

// urlFor builds the catalog URL for a normalized descriptor. Manuals,
// symptom sections and installation documents live on the model page;
// parts searches have their own listing under it.
func (f *FetcherAdapter) urlFor(d domain.QueryDescriptor) string {
	modelURL := fmt.Sprintf("%s/Models/%s/", f.baseURL, url.PathEscape(d.ModelNumber))
	if d.Service == domain.ServiceParts {
		return fmt.Sprintf("%sParts/?SearchTerm=%s", modelURL, url.QueryEscape(d.Query))
	}
	return modelURL
}

func (f *FetcherAdapter) parse(d domain.QueryDescriptor, markup string) (*domain.LookupResult, error) {
	doc, err := parseDocument(markup)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParseFailed, err)
	}

	switch d.Service {
	case domain.ServiceParts:
		parts := rankParts(parseParts(doc, f.baseURL), d.Query)
		if len(parts) == 0 {
			return &domain.LookupResult{Kind: domain.ResultNotFound}, nil
		}
		return &domain.LookupResult{Kind: domain.ResultPart, Parts: parts}, nil

	case domain.ServiceDiagnosis:
		symptoms := parseSymptoms(doc, f.baseURL)
		if len(symptoms) == 0 {
			return &domain.LookupResult{Kind: domain.ResultNotFound}, nil
		}
		return &domain.LookupResult{Kind: domain.ResultSymptomList, Symptoms: symptoms}, nil

	default: // manual and installation documents
		manuals := parseManuals(doc, f.baseURL)
		if len(manuals) == 0 {
			return &domain.LookupResult{Kind: domain.ResultNotFound}, nil
		}
		return &domain.LookupResult{Kind: domain.ResultManual, Manuals: manuals}, nil
	}
}

// httpLoader struct - Plain HTTP page loader
type httpLoader struct {
	client    *http.Client
	userAgent string
}

func newHTTPLoader(timeout time.Duration, userAgent string) *httpLoader {
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}
	return &httpLoader{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
	}
}

// Load fetches one page, capped at 2MB of body.
func (l *httpLoader) Load(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := l.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", domain.ErrFetchTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", errPageNotFound
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: HTTP %d", domain.ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", domain.ErrFetchTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	return string(body), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
