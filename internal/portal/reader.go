// Package portal reads claim document text from the insurer's web portal
// with a headless browser. It implements textsource.Source.
package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"claim_contact_backend/internal/textsource"
	"claim_contact_backend/platform/config"
	"claim_contact_backend/platform/logger"

	"github.com/playwright-community/playwright-go"
)

// ErrLoginFailed is returned when the portal does not show its main menu
// after submitting credentials.
var ErrLoginFailed = errors.New("portal login failed")

// recordTextScript returns the text of the first element whose text
// contains enough of the needles and is long enough to be a full record.
const recordTextScript = `(opts) => {
	const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_ELEMENT);
	while (walker.nextNode()) {
		const text = walker.currentNode.textContent || "";
		const upper = text.toUpperCase();
		let score = 0;
		for (const needle of opts.needles) {
			if (upper.includes(needle)) score++;
		}
		if (score >= opts.minNeedles && text.length > opts.minChars) {
			return text.trim();
		}
	}
	return "";
}`

// fallbackTextScript reads the first non-empty fallback element, then the
// whole body.
const fallbackTextScript = `(selectors) => {
	for (const sel of selectors) {
		const el = document.querySelector(sel);
		if (!el) continue;
		const text = el.tagName === "TEXTAREA" ? el.value : el.textContent;
		if (text && text.trim()) return text.trim();
	}
	return ((document.body && document.body.innerText) || "").trim();
}`

// Reader drives a single browser page. Calls are serialized.
type Reader struct {
	cfg     config.PortalConfig
	profile Profile
	pacer   *Pacer
	log     *logger.Logger

	mu       sync.Mutex
	pw       *playwright.Playwright
	browser  playwright.Browser
	page     playwright.Page
	loggedIn bool
}

// NewReader creates a reader. The browser starts on first use.
func NewReader(cfg config.PortalConfig, profile Profile, log *logger.Logger) *Reader {
	return &Reader{
		cfg:     cfg,
		profile: profile,
		pacer:   NewPacer(cfg.GetPortalMinDelay(), cfg.GetPortalMaxDelay()),
		log:     log,
	}
}

// Start installs the browser driver if needed and opens a page.
func (r *Reader) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.start()
}

func (r *Reader) start() error {
	if r.page != nil {
		return nil
	}
	if r.cfg.GetPortalBaseURL() == "" {
		return errors.New("portal base url not configured")
	}

	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(r.cfg.GetPortalHeadless()),
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("launch browser: %w", err)
	}

	page, err := browser.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return fmt.Errorf("open page: %w", err)
	}
	page.SetDefaultTimeout(millis(r.profile.Timeouts.Default.Std()))

	r.pw = pw
	r.browser = browser
	r.page = page
	r.log.Info("portal browser started", "headless", r.cfg.GetPortalHeadless())
	return nil
}

// Login opens the portal and signs in.
func (r *Reader) Login(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.start(); err != nil {
		return err
	}
	return r.login(ctx)
}

func (r *Reader) login(ctx context.Context) error {
	p := r.profile
	if _, err := r.page.Goto(r.cfg.GetPortalBaseURL(), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("open portal: %w", err)
	}
	if err := r.pacer.Wait(ctx); err != nil {
		return err
	}

	if err := r.page.Locator(p.Login.Username).Fill(r.cfg.GetPortalUsername()); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if err := r.page.Locator(p.Login.Password).Fill(r.cfg.GetPortalPassword()); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := r.page.Locator(p.Login.Submit).Click(); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	if err := r.pacer.Wait(ctx); err != nil {
		return err
	}

	if p.Login.ReadyMenuItem != "" {
		if err := r.visible(r.menuItem(p.Login.ReadyMenuItem), p.Timeouts.Element.Std()); err != nil {
			return fmt.Errorf("%w: %v", ErrLoginFailed, err)
		}
	}

	r.loggedIn = true
	r.log.Info("portal login succeeded")
	return nil
}

// FetchText returns the record text for claimNumber, or
// textsource.ErrNotFound when the search has no matching row.
func (r *Reader) FetchText(ctx context.Context, claimNumber string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.start(); err != nil {
		return "", err
	}
	if !r.loggedIn {
		if err := r.login(ctx); err != nil {
			return "", err
		}
	}

	text, err := r.fetch(ctx, claimNumber)
	if err != nil && !errors.Is(err, textsource.ErrNotFound) && ctx.Err() == nil {
		// The page may be on an unexpected screen; start over next time.
		r.loggedIn = false
	}
	if err == nil {
		r.log.Info("portal text fetched", "claim_number", claimNumber, "chars", len(text))
	}
	return text, err
}

func (r *Reader) fetch(ctx context.Context, claimNumber string) (string, error) {
	if err := r.openSearch(ctx); err != nil {
		return "", err
	}
	if err := r.search(ctx, claimNumber); err != nil {
		return "", err
	}
	if err := r.openRecord(ctx); err != nil {
		return "", err
	}
	return r.readText(ctx)
}

func (r *Reader) openSearch(ctx context.Context) error {
	for _, name := range r.profile.Navigation.MenuItems {
		item := r.menuItem(name)
		if err := r.visible(item, r.profile.Timeouts.Element.Std()); err != nil {
			return fmt.Errorf("menu %q: %w", name, err)
		}
		if err := item.Click(); err != nil {
			return fmt.Errorf("menu %q: %w", name, err)
		}
		if err := r.pacer.Wait(ctx); err != nil {
			return err
		}
	}

	input := r.frame().Locator(r.profile.Search.ClaimInput)
	if err := r.visible(input, r.profile.Timeouts.SearchReady.Std()); err != nil {
		return fmt.Errorf("search form: %w", err)
	}
	return nil
}

func (r *Reader) search(ctx context.Context, claimNumber string) error {
	frame := r.frame()
	input := frame.Locator(r.profile.Search.ClaimInput)
	if err := input.Fill(""); err != nil {
		return fmt.Errorf("clear claim number: %w", err)
	}
	if err := input.Fill(claimNumber); err != nil {
		return fmt.Errorf("fill claim number: %w", err)
	}
	if err := r.pacer.Wait(ctx); err != nil {
		return err
	}
	if err := frame.Locator(r.profile.Search.Submit).Click(); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}

	rows := frame.Locator(r.profile.Search.ResultRows)
	if err := r.visible(rows.First(), r.profile.Timeouts.Element.Std()); err != nil {
		return fmt.Errorf("claim %s: %w", claimNumber, textsource.ErrNotFound)
	}

	match := rows.Filter(playwright.LocatorFilterOptions{HasText: claimNumber})
	count, err := match.Count()
	if err != nil {
		return fmt.Errorf("count result rows: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("claim %s: %w", claimNumber, textsource.ErrNotFound)
	}
	if err := match.First().Click(); err != nil {
		return fmt.Errorf("select result row: %w", err)
	}
	return r.pacer.Wait(ctx)
}

func (r *Reader) openRecord(ctx context.Context) error {
	frame := r.frame()
	for _, sel := range r.profile.Record.TreeNodes {
		node := frame.Locator(sel).First()
		if err := r.visible(node, r.profile.Timeouts.Element.Std()); err != nil {
			return fmt.Errorf("record node %q: %w", sel, err)
		}
		if err := node.Click(); err != nil {
			return fmt.Errorf("record node %q: %w", sel, err)
		}
		if err := r.pacer.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) readText(ctx context.Context) (string, error) {
	frame := r.page.Frame(playwright.PageFrameOptions{Name: playwright.String(r.profile.Search.FrameName)})
	if frame == nil {
		return "", fmt.Errorf("frame %q not found", r.profile.Search.FrameName)
	}
	if _, err := frame.WaitForSelector("body", playwright.FrameWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(millis(r.profile.Timeouts.Element.Std())),
	}); err != nil {
		return "", fmt.Errorf("record body: %w", err)
	}

	t := r.profile.Text
	args := map[string]any{
		"needles":    upperAll(t.Needles),
		"minNeedles": t.MinNeedles,
		"minChars":   t.MinChars,
	}
	for attempt := 1; attempt <= t.Attempts; attempt++ {
		text, err := evaluateString(frame, recordTextScript, args)
		if err != nil {
			return "", fmt.Errorf("read record text: %w", err)
		}
		if len(text) > t.MinChars {
			return text, nil
		}
		if attempt < t.Attempts {
			if err := sleep(ctx, t.RetryDelay.Std()); err != nil {
				return "", err
			}
		}
	}

	text, err := evaluateString(frame, fallbackTextScript, t.Fallbacks)
	if err != nil {
		return "", fmt.Errorf("read fallback text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", textsource.ErrNotFound
	}
	return text, nil
}

// Close stops the browser and the driver.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if r.browser != nil {
		errs = append(errs, r.browser.Close())
	}
	if r.pw != nil {
		errs = append(errs, r.pw.Stop())
	}
	r.pw, r.browser, r.page, r.loggedIn = nil, nil, nil, false
	return errors.Join(errs...)
}

func (r *Reader) frame() playwright.FrameLocator {
	return r.page.FrameLocator(r.profile.Search.Frame)
}

func (r *Reader) menuItem(name string) playwright.Locator {
	return r.page.GetByRole(playwright.AriaRole("menuitem"), playwright.PageGetByRoleOptions{
		Name:  name,
		Exact: playwright.Bool(true),
	})
}

func (r *Reader) visible(loc playwright.Locator, timeout time.Duration) error {
	return loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(millis(timeout)),
	})
}

func evaluateString(frame playwright.Frame, script string, arg any) (string, error) {
	result, err := frame.Evaluate(script, arg)
	if err != nil {
		return "", err
	}
	text, _ := result.(string)
	return text, nil
}

func upperAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToUpper(v)
	}
	return out
}

func millis(d time.Duration) float64 {
	return float64(d.Milliseconds())
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ textsource.Source = (*Reader)(nil)
