// Package browser launches isolated Chromium sessions for scraping.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"review-harvester/internal/config"
	"review-harvester/internal/logging"
	"review-harvester/internal/logging/types"
	"review-harvester/internal/revealer"
	"review-harvester/internal/session"
	"review-harvester/pkg/utils"
)

var (
	ErrLaunch            = errors.New("browser_launch_failed")
	ErrNavigation        = errors.New("navigation_failed")
	ErrNavigationTimeout = errors.New("navigation_timeout")
)

// Launcher starts one browser per session
type Launcher struct {
	cfg    *config.Config
	logger types.Logger
}

// NewLauncher creates a launcher for the scraper settings in cfg
func NewLauncher(cfg *config.Config) *Launcher {
	return &Launcher{
		cfg:    cfg,
		logger: logging.ForComponent("browser"),
	}
}

// Session is one live browser with a single stealth page
type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	logger   types.Logger
	// URL patterns ignored while waiting for the network to go quiet
	idleExcludes []string
	closeOnce    sync.Once
	closeErr     error
}

// Open launches a browser, replays cookies and navigates to targetURL.
// On error nothing is left running.
func (l *Launcher) Open(ctx context.Context, targetURL string, cookies []session.Cookie) (*Session, error) {
	s, err := l.start(ctx, l.cfg.Scraper.HeadlessMode)
	if err != nil {
		return nil, err
	}

	applied := s.ApplyCookies(cookies, targetURL)
	l.logger.Info("Session cookies applied", map[string]interface{}{
		"applied": applied,
		"total":   len(cookies),
	})

	if err := s.Navigate(ctx, targetURL, l.cfg.Scraper.NavigationTimeout, l.cfg.Scraper.NetworkIdle); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// start launches and connects a browser and prepares a stealth page
func (l *Launcher) start(ctx context.Context, headless bool) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lc := l.newChromeLauncher(headless)

	controlURL, err := lc.Launch()
	if err != nil {
		lc.Kill()
		lc.Cleanup()
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		lc.Kill()
		lc.Cleanup()
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	s := &Session{
		launcher:     lc,
		browser:      browser,
		logger:       l.logger,
		idleExcludes: l.cfg.Scraper.IdleExcludes,
	}

	page, err := stealth.Page(browser)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: failed to create stealth page: %v", ErrLaunch, err)
	}
	s.page = page

	if ua := l.cfg.Scraper.UserAgent; ua != "" {
		err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: ua,
			Platform:  l.cfg.Scraper.Platform,
		})
		if err != nil {
			l.logger.Warn("Failed to set user agent", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if _, err := page.EvalOnNewDocument(stealthScript(l.cfg.Scraper.Platform)); err != nil {
		l.logger.Warn("Failed to inject stealth script", map[string]interface{}{
			"error": err.Error(),
		})
	}

	l.logger.Debug("Browser session started", map[string]interface{}{
		"headless": headless,
	})
	return s, nil
}

// newChromeLauncher configures the Chromium flags for an isolated run
func (l *Launcher) newChromeLauncher(headless bool) *launcher.Launcher {
	lc := launcher.New().
		Headless(headless).
		NoSandbox(true).
		Set("disable-setuid-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-features", "IsolateOrigins,site-per-process").
		Set("disable-gpu").          // container GPU contexts fail
		Set("disable-dev-shm-usage") // small /dev/shm in containers

	if chromePath := getSystemChromePath(l.cfg.Scraper.ChromeBin); chromePath != "" {
		lc = lc.Bin(chromePath)
		l.logger.Debug("Using system Chrome browser", map[string]interface{}{
			"chrome_path": chromePath,
		})
	}

	if l.cfg.Scraper.UserAgent != "" {
		lc = lc.Set("user-agent", l.cfg.Scraper.UserAgent)
	}

	return lc
}

// ApplyCookies installs cookies in one batch, falling back to one at a time
// when the batch is rejected. It returns how many cookies were applied.
// Cookies without a domain are bound to fallbackURL.
func (s *Session) ApplyCookies(cookies []session.Cookie, fallbackURL string) int {
	params := toCookieParams(cookies, fallbackURL)
	if len(params) == 0 {
		// SetCookies with an empty list clears the jar
		return 0
	}

	err := s.page.SetCookies(params)
	if err == nil {
		return len(params)
	}

	s.logger.Warn("Batch cookie apply failed, applying individually", map[string]interface{}{
		"error": err.Error(),
		"count": len(params),
	})

	applied := 0
	for _, param := range params {
		if err := s.page.SetCookies([]*proto.NetworkCookieParam{param}); err != nil {
			s.logger.Debug("Cookie rejected", map[string]interface{}{
				"name":  param.Name,
				"error": err.Error(),
			})
			continue
		}
		applied++
	}
	return applied
}

// Navigate loads url and waits for the network to go quiet, all within
// timeout. A page that loaded but kept requests in flight until the deadline
// is accepted; long-polling and beacon traffic never goes idle.
func (s *Session) Navigate(ctx context.Context, url string, timeout, idle time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page := s.page.Context(navCtx)
	waitIdle := page.WaitRequestIdle(idle, nil, s.idleExcludes, nil)

	loaded := false
	err := page.Navigate(url)
	if err == nil {
		err = page.WaitLoad()
	}
	if err == nil {
		loaded = true
		waitIdle()
		err = navCtx.Err()
	}

	busy, err := navigationResult(ctx, url, timeout, loaded, errors.Is(navCtx.Err(), context.DeadlineExceeded), err)
	if err != nil {
		return err
	}
	if busy {
		s.logger.Warn("Page loaded but the network never went idle, continuing", map[string]interface{}{
			"url":     url,
			"timeout": utils.FormatDuration(timeout),
		})
		return nil
	}

	s.logger.Debug("Successfully navigated to URL", map[string]interface{}{
		"url": url,
	})
	return nil
}

// navigationResult classifies how a navigation ended. busy is true when the
// load event fired but the idle wait ran into the deadline.
func navigationResult(ctx context.Context, url string, timeout time.Duration, loaded, expired bool, err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if expired && loaded {
		return true, nil
	}
	if expired {
		return false, fmt.Errorf("%w: %s after %s", ErrNavigationTimeout, url, timeout)
	}
	return false, fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
}

// Page exposes the live page to the revealer
func (s *Session) Page() revealer.Page {
	return &rodPage{page: s.page}
}

// HTML returns the current DOM serialized as HTML
func (s *Session) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

// URL returns the page's current address, or "" when unknown
func (s *Session) URL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Cookies returns every cookie visible to the page
func (s *Session) Cookies() ([]session.Cookie, error) {
	cookies, err := s.page.Cookies(nil)
	if err != nil {
		return nil, err
	}
	return fromNetworkCookies(cookies), nil
}

// Close terminates the browser process. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.browser != nil {
			s.closeErr = s.browser.Close()
		}
		if s.launcher != nil {
			s.launcher.Kill()
			s.launcher.Cleanup()
		}
		s.logger.Debug("Browser session closed")
	})
	return s.closeErr
}

// getSystemChromePath finds the system-installed Chrome/Chromium browser
func getSystemChromePath(configured string) string {
	candidates := []string{configured, os.Getenv("CHROME_BIN"), os.Getenv("CHROME_PATH")}
	candidates = append(candidates,
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/opt/google/chrome/chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"C:\\Program Files\\Google\\Chrome\\Application\\chrome.exe",
		"C:\\Program Files (x86)\\Google\\Chrome\\Application\\chrome.exe",
	)

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
