package browser

import (
	"context"
	"fmt"

	"review-harvester/internal/revealer"
	"review-harvester/internal/session"
)

// ExportCookies opens a visible browser on the login page, gives the operator
// LoginWait to sign in, then saves every cookie the home page sees to path.
// It returns the number of cookies written.
func (l *Launcher) ExportCookies(ctx context.Context, path string) (int, error) {
	s, err := l.start(ctx, false)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	timeout := l.cfg.Scraper.NavigationTimeout
	idle := l.cfg.Scraper.NetworkIdle

	if err := s.Navigate(ctx, l.cfg.Scraper.LoginURL, timeout, idle); err != nil {
		return 0, err
	}

	l.logger.Info("Waiting for manual login", map[string]interface{}{
		"login_url": l.cfg.Scraper.LoginURL,
		"wait":      l.cfg.Scraper.LoginWait.String(),
	})
	if err := revealer.Sleep(ctx, l.cfg.Scraper.LoginWait); err != nil {
		return 0, err
	}

	if err := s.Navigate(ctx, l.cfg.Scraper.HomeURL, timeout, idle); err != nil {
		return 0, err
	}

	cookies, err := s.Cookies()
	if err != nil {
		return 0, fmt.Errorf("failed to read browser cookies: %w", err)
	}

	if err := session.Save(path, cookies); err != nil {
		return 0, err
	}

	l.logger.Info("Cookies exported", map[string]interface{}{
		"path":  path,
		"count": len(cookies),
	})
	return len(cookies), nil
}
