package executor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/holps-7/striko/pkg/model"
)

// BuildURL parses raw as an absolute URL and appends query pairs to it in
// order. Pairs already in raw are kept as written; duplicate keys stay
// duplicated.
func BuildURL(raw string, query model.KeyValues) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: must be absolute", raw)
	}

	q := u.RawQuery
	for _, p := range query {
		if q != "" {
			q += "&"
		}
		q += url.QueryEscape(p.Key) + "=" + url.QueryEscape(p.Value)
	}
	u.RawQuery = q

	return u.String(), nil
}
