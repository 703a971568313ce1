package ui

import (
	"net/url"
	"os/exec"
	"runtime"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"

	"storesearch/internal/domain"
)

// BrowserNavigator resolves storefront links against the base URL and,
// when enabled, hands them to the system browser.
type BrowserNavigator struct {
	base *url.URL
	open bool
	run  func(name string, args ...string) error
}

// NewBrowserNavigator creates a navigator for baseURL. With open false it
// only logs where it would have gone.
func NewBrowserNavigator(baseURL string, open bool) (*BrowserNavigator, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, serr.Wrap(err, "invalid storefront base URL "+baseURL)
	}
	return &BrowserNavigator{base: base, open: open, run: startDetached}, nil
}

// Resolve turns a storefront link into an absolute URL.
func (b *BrowserNavigator) Resolve(target string) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", serr.Wrap(err, "invalid link "+target)
	}
	return b.base.ResolveReference(ref).String(), nil
}

// Navigate opens target.
func (b *BrowserNavigator) Navigate(target string, reason domain.NavigationReason) error {
	abs, err := b.Resolve(target)
	if err != nil {
		return err
	}
	if !b.open {
		logger.Info("Navigation (browser disabled)", "url", abs, "reason", string(reason))
		return nil
	}
	name, args := openerCommand(runtime.GOOS, abs)
	return b.run(name, args...)
}

func openerCommand(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

// startDetached launches the opener without waiting on the browser.
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return serr.Wrap(err, "failed to launch "+name)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
