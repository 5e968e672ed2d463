package partselect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"appliancebot/internal/domain"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// browserLoader struct - Scripted-browser page loader backed by rod, for
// catalog pages that require script execution. The browser is launched
// lazily on first use and shared across fetches.
type browserLoader struct {
	timeout time.Duration

	mu      sync.Mutex
	browser *rod.Browser
}

func newBrowserLoader(timeout time.Duration) *browserLoader {
	return &browserLoader{timeout: timeout}
}

func (l *browserLoader) ensureStarted(ctx context.Context) (*rod.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.browser != nil {
		return l.browser, nil
	}

	controlURL, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launch browser: %v", domain.ErrFetchFailed, err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: connect to browser: %v", domain.ErrFetchFailed, err)
	}

	l.browser = browser
	return browser, nil
}

// Load navigates a fresh page to the URL, waits for the load event and
// returns the rendered document.
func (l *browserLoader) Load(ctx context.Context, pageURL string) (string, error) {
	browser, err := l.ensureStarted(ctx)
	if err != nil {
		return "", err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("%w: open page: %v", domain.ErrFetchFailed, err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(l.timeout)

	if err := page.Navigate(pageURL); err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: navigate %s: %v", domain.ErrFetchTimeout, pageURL, err)
		}
		return "", fmt.Errorf("%w: navigate %s: %v", domain.ErrFetchFailed, pageURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: wait load %s: %v", domain.ErrFetchTimeout, pageURL, err)
		}
		return "", fmt.Errorf("%w: wait load %s: %v", domain.ErrFetchFailed, pageURL, err)
	}

	markup, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("%w: read document: %v", domain.ErrFetchFailed, err)
	}

	return markup, nil
}
