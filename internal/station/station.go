package station

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrValidation = errors.New("invalid station")
	ErrIndex      = errors.New("station index out of range")
	ErrFormat     = errors.New("invalid station document")
)

type Station struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Genre     string `json:"genre,omitempty"`
	Image     string `json:"image,omitempty"`
	BackupURL string `json:"backupUrl,omitempty"`
}

// Normalize returns a copy with surrounding whitespace removed from every field.
func (s Station) Normalize() Station {
	return Station{
		Name:      strings.TrimSpace(s.Name),
		URL:       strings.TrimSpace(s.URL),
		Genre:     strings.TrimSpace(s.Genre),
		Image:     strings.TrimSpace(s.Image),
		BackupURL: strings.TrimSpace(s.BackupURL),
	}
}

func (s Station) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !IsValidURI(s.URL) {
		return fmt.Errorf("%w: url %q is not a valid URI", ErrValidation, s.URL)
	}
	if s.Image != "" && !IsValidURI(s.Image) {
		return fmt.Errorf("%w: image %q is not a valid URI", ErrValidation, s.Image)
	}
	if s.BackupURL != "" && !IsValidURI(s.BackupURL) {
		return fmt.Errorf("%w: backup url %q is not a valid URI", ErrValidation, s.BackupURL)
	}
	return nil
}

// HasBackup reports whether a fallback stream is configured.
func (s Station) HasBackup() bool {
	return s.BackupURL != "" && s.BackupURL != s.URL
}

// IsValidURI accepts absolute URIs: a scheme plus either a host or an opaque part.
func IsValidURI(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}

func Defaults() []Station {
	return []Station{
		{
			Name:  "Ulysse FM",
			URL:   "http://51.178.31.38:8000/stream",
			Genre: "Variety",
			Image: "https://cdn-radiotime-logos.tunein.com/s107827q.png",
		},
		{
			Name:  "Hits Europe",
			URL:   "https://stream2.superfm.lv:8000/ehr.aac",
			Genre: "Pop",
			Image: "https://cdn-radiotime-logos.tunein.com/s24928q.png",
		},
		{
			Name:  "Absolute Classic Hits",
			URL:   "http://94media.net/stations/jimfm/jim128.pls",
			Genre: "Classic Rock",
			Image: "https://cdn-radiotime-logos.tunein.com/s107827q.png",
		},
		{
			Name:  "Rádio Mais POP FM",
			URL:   "http://stream.zeno.fm/dx838nn9e8zuv.acc",
			Genre: "Pop",
			Image: "https://cdn-radiotime-logos.tunein.com/s107827q.png",
		},
	}
}
