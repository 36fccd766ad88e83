/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: identify.go
Description: User agent identification. Resolves a user agent string to a browser ID and
a release version of the release database. The default identifier is a small ordered
rule table; callers may supply any other Identifier.
*/

package browsers

import (
	"regexp"
	"strings"
)

// Status of an identification
type Status int

const (
	// Unidentified: the browser could not be determined
	Unidentified Status = iota
	// UnknownVersion: the browser is known but the version is not a known release
	UnknownVersion
	// Identified: browser and version are both in the release database
	Identified
)

func (s Status) String() string {
	switch s {
	case Identified:
		return "identified"
	case UnknownVersion:
		return "unknown version"
	default:
		return "unidentified"
	}
}

// Identity is the result of identifying a user agent
type Identity struct {
	BrowserID string
	Version   string
	Status    Status
}

// Identifier resolves user agents against a release database
type Identifier interface {
	Identify(userAgent string, db Database) Identity
}

// IdentifierFunc adapts a function to the Identifier interface
type IdentifierFunc func(userAgent string, db Database) Identity

// Identify calls f
func (f IdentifierFunc) Identify(userAgent string, db Database) Identity {
	return f(userAgent, db)
}

type uaRule struct {
	pattern *regexp.Regexp
	// browser returns the browser ID for a matching user agent
	browser func(ua string) string
}

func platform(desktop, android, ios string) func(string) string {
	return func(ua string) string {
		switch {
		case strings.Contains(ua, "Android"):
			return android
		case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"), strings.Contains(ua, "iPod"):
			return ios
		default:
			return desktop
		}
	}
}

func fixed(id string) func(string) string {
	return func(string) string { return id }
}

// Rule order matters: Chromium derivatives also carry Chrome/ and Safari/ tokens.
var uaRules = []uaRule{
	{regexp.MustCompile(`Edge?/(\d+(?:\.\d+)*)`), fixed("edge")},
	{regexp.MustCompile(`OPR/(\d+(?:\.\d+)*)`), platform("opera", "opera_android", "")},
	{regexp.MustCompile(`Opera/.*Version/(\d+(?:\.\d+)*)`), platform("opera", "opera_android", "")},
	{regexp.MustCompile(`SamsungBrowser/(\d+(?:\.\d+)*)`), fixed("samsunginternet_android")},
	{regexp.MustCompile(`Firefox/(\d+(?:\.\d+)*)`), platform("firefox", "firefox_android", "")},
	{regexp.MustCompile(`; wv\).*Chrome/(\d+(?:\.\d+)*)`), fixed("webview_android")},
	{regexp.MustCompile(`Chrome/(\d+(?:\.\d+)*)`), platform("chrome", "chrome_android", "")},
	{regexp.MustCompile(`(?:iPhone|iPad|iPod).*? OS (\d+(?:_\d+)*)`), fixed("safari_ios")},
	{regexp.MustCompile(`Version/(\d+(?:\.\d+)*).*Safari/`), platform("safari", "", "safari_ios")},
	{regexp.MustCompile(`MSIE (\d+(?:\.\d+)*)`), fixed("ie")},
	{regexp.MustCompile(`Trident/.*rv:(\d+(?:\.\d+)*)`), fixed("ie")},
}

// UserAgentIdentifier is the default Identifier
type UserAgentIdentifier struct{}

// NewUserAgentIdentifier creates the default identifier
func NewUserAgentIdentifier() *UserAgentIdentifier {
	return &UserAgentIdentifier{}
}

// Identify resolves the browser and the closest matching known release
func (u *UserAgentIdentifier) Identify(userAgent string, db Database) Identity {
	for _, rule := range uaRules {
		m := rule.pattern.FindStringSubmatch(userAgent)
		if m == nil {
			continue
		}
		id := rule.browser(userAgent)
		if id == "" {
			return Identity{Status: Unidentified}
		}
		return matchRelease(id, strings.ReplaceAll(m[1], "_", "."), db)
	}
	return Identity{Status: Unidentified}
}

// matchRelease tries the full version, then major.minor, then major
func matchRelease(id, full string, db Database) Identity {
	browser, ok := db[id]
	if !ok {
		return Identity{BrowserID: id, Version: full, Status: Unidentified}
	}

	for _, candidate := range versionCandidates(full) {
		if browser.HasKnownRelease(candidate) {
			return Identity{BrowserID: id, Version: candidate, Status: Identified}
		}
	}
	return Identity{BrowserID: id, Version: full, Status: UnknownVersion}
}

func versionCandidates(full string) []string {
	parts := strings.Split(full, ".")
	candidates := []string{full}
	if len(parts) > 2 {
		candidates = append(candidates, parts[0]+"."+parts[1])
	}
	if len(parts) > 1 {
		candidates = append(candidates, parts[0])
	}
	return candidates
}
