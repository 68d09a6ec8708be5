package validate

import (
	"regexp"
	"strings"

	"marketplace/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[\p{L}\p{N} _'\-]{1,50}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePhone = regexp.MustCompile(`^\+?[0-9 ]{8,20}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > 50 {
		s = string(r[:50])
	}
	return s, reQ.MatchString(s)
}

// ID validates a simple resource identifier (product/category/seller ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Required trims s and rejects it when empty.
func Required(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", domain.Invalidf("%s is required", field)
	}
	return s, nil
}

// RequiredID is Required plus the identifier format check.
func RequiredID(field, s string) (string, error) {
	s, err := Required(field, s)
	if err != nil {
		return "", err
	}
	if _, ok := ID(s); !ok {
		return "", domain.Invalidf("%s is malformed", field)
	}
	return s, nil
}

// MinImages is the smallest image set a product may carry.
const MinImages = 2

// Images trims every entry and keeps the submitted order.
func Images(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, u := range in {
		u = strings.TrimSpace(u)
		if u == "" {
			return nil, domain.Invalidf("image urls must not be empty")
		}
		out = append(out, u)
	}
	if len(out) < MinImages {
		return nil, domain.Invalidf("at least %d images are required", MinImages)
	}
	return out, nil
}

// Contact validates the checkout form. GPS coordinates are optional but
// must come as a pair.
func Contact(c domain.Contact) (domain.Contact, error) {
	var err error
	if c.Name, err = Required("name", c.Name); err != nil {
		return c, err
	}
	if c.Phone, err = Required("phone", c.Phone); err != nil {
		return c, err
	}
	if !rePhone.MatchString(c.Phone) {
		return c, domain.Invalidf("phone is malformed")
	}
	if c.Neighborhood, err = Required("neighborhood", c.Neighborhood); err != nil {
		return c, err
	}
	if c.Commune, err = Required("commune", c.Commune); err != nil {
		return c, err
	}
	if c.City, err = Required("city", c.City); err != nil {
		return c, err
	}
	if (c.Latitude == nil) != (c.Longitude == nil) {
		return c, domain.Invalidf("latitude and longitude go together")
	}
	if c.Latitude != nil {
		if *c.Latitude < -90 || *c.Latitude > 90 || *c.Longitude < -180 || *c.Longitude > 180 {
			return c, domain.Invalidf("coordinates out of range")
		}
	}
	return c, nil
}

// Password enforces a simple length window for login checks.
func Password(s string) bool {
	l := len(s)
	return l >= 8 && l <= 72
}
