package cache

import "strings"

// Key builds a cache key following the {domain}:{scope}:{identity}[:...]
// namespace convention, e.g. operators:concentration:0xabc or
// metadata:operator:0xabc.
func Key(domain, scope string, parts ...string) string {
	elems := append([]string{domain, scope}, parts...)
	return strings.Join(elems, ":")
}
