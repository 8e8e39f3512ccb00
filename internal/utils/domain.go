package utils

import (
	"errors"
	"net/url"
	"strings"
)

// ExtractRawDomain normalizes user- or scraper-supplied company domains:
// strips scheme, path, trailing slash, and the www. prefix.
func ExtractRawDomain(input string) (string, error) {
	if input == "" {
		return "", errors.New("input cannot be empty")
	}

	domain := strings.TrimSpace(input)

	if strings.Contains(domain, "://") {
		parsedURL, err := url.Parse(domain)
		if err != nil {
			return "", errors.New("invalid URL format")
		}

		if parsedURL.Hostname() == "" {
			return "", errors.New("no hostname found in URL")
		}

		domain = parsedURL.Hostname()
	}

	if idx := strings.IndexByte(domain, '/'); idx >= 0 {
		domain = domain[:idx]
	}

	if strings.HasPrefix(strings.ToLower(domain), "www.") {
		domain = domain[4:]
	}

	domain = strings.ToLower(domain)

	if domain == "" {
		return "", errors.New("invalid domain after processing")
	}

	return domain, nil
}
