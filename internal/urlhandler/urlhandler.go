package urlhandler

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

// MaxFilenameComponentLength caps ConvertURLToFilename output so the
// surrounding prefix and suffix still fit a 255-byte file name.
const MaxFilenameComponentLength = 100

// Regex for cleaning filenames
var (
	unsafeFilenameCharsRegex = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)
	multipleUnderscoresRegex = regexp.MustCompile(`_+`)
)

// NormalizeURL normalizes a URL string, ensuring it has a scheme, lowercase host, and no fragment.
func NormalizeURL(rawURL string) (string, error) {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return "", ErrEmptyURL
	}

	// Add scheme if missing
	if !strings.Contains(trimmedURL, "://") && !strings.HasPrefix(trimmedURL, "//") {
		trimmedURL = "https://" + trimmedURL
	}

	parsedURL, err := url.Parse(trimmedURL)
	if err != nil {
		return "", WrapError(err, "could not parse URL '"+trimmedURL+"'")
	}

	if parsedURL.Host == "" {
		return "", ErrMissingHost
	}

	parsedURL.Host = strings.ToLower(parsedURL.Host)
	parsedURL.Fragment = ""

	return parsedURL.String(), nil
}

// ValidateURLFormat checks that rawURL is an absolute http(s) URL with a host.
func ValidateURLFormat(rawURL string) error {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return ErrEmptyURL
	}

	parsedURL, err := url.ParseRequestURI(trimmedURL)
	if err != nil {
		return WrapError(err, "invalid URL format '"+trimmedURL+"'")
	}

	switch strings.ToLower(parsedURL.Scheme) {
	case "http", "https":
	default:
		return NewError("unsupported URL scheme '" + parsedURL.Scheme + "'")
	}

	if parsedURL.Host == "" {
		return ErrMissingHost
	}

	return nil
}

// ConvertURLToFilename creates a safe filename component from a URL or any input string.
// It removes the scheme, replaces unsafe characters with underscores, and cleans up underscores.
// The result never contains path separators or query-string punctuation.
// Names longer than MaxFilenameComponentLength are truncated and suffixed
// with a short hash of the full input, so distinct long URLs stay distinct.
func ConvertURLToFilename(input string) string {
	// 1. Remove scheme (e.g., "http://", "https://") if present.
	name := input
	if i := strings.Index(name, "://"); i != -1 {
		name = name[i+3:]
	}

	// 2. Replace all characters not in the safe set (letters, numbers, underscore, dot, hyphen) with an underscore.
	name = unsafeFilenameCharsRegex.ReplaceAllString(name, "_")

	// 3. Replace multiple consecutive underscores with a single underscore.
	name = multipleUnderscoresRegex.ReplaceAllString(name, "_")

	// 4. Remove leading or trailing underscores that might result from replacements at the start/end.
	name = strings.Trim(name, "_")

	// A name made only of dots would resolve to the current or parent directory.
	if strings.Trim(name, ".") == "" {
		return "sanitized_empty_input"
	}

	if len(name) > MaxFilenameComponentLength {
		sum := sha256.Sum256([]byte(input))
		suffix := "_" + hex.EncodeToString(sum[:4])
		name = strings.TrimRight(name[:MaxFilenameComponentLength-len(suffix)], "_.") + suffix
	}

	return name
}
