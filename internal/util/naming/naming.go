package naming

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// UnknownSiteNumber is used when a site name has no trailing digits.
const UnknownSiteNumber = "unknown"

var (
	trailingDigits = regexp.MustCompile(`\d+$`)
	indexSuffix    = regexp.MustCompile(`-(\d+)$`)
	slugStrip      = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse   = regexp.MustCompile(`[-\s]+`)
)

// SiteNumber returns the trailing digits of a site name, or UnknownSiteNumber.
func SiteNumber(siteName string) string {
	if m := trailingDigits.FindString(siteName); m != "" {
		return m
	}
	return UnknownSiteNumber
}

// SwitchPrefix is the name prefix shared by all switches of a site, e.g. "sw12-".
func SwitchPrefix(siteNumber string) string {
	return fmt.Sprintf("sw%s-", siteNumber)
}

// SwitchName returns the name of switch index at a site, e.g. "sw12-3".
func SwitchName(siteNumber string, index int) string {
	return fmt.Sprintf("sw%s-%d", siteNumber, index)
}

// SwitchIndex extracts the numeric -N suffix of a device name.
func SwitchIndex(name string) (int, bool) {
	m := indexSuffix.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// LocationName names a floor of site, e.g. "Site-12-0".
func LocationName(site string, floor int) string {
	return fmt.Sprintf("%s-%d", site, floor)
}

// LocationSlug never contains a minus sign for the floor number.
func LocationSlug(site string, floor int) string {
	if floor < 0 {
		return Slugify(fmt.Sprintf("%s-neg%d", site, -floor))
	}
	return Slugify(fmt.Sprintf("%s-%d", site, floor))
}

// Slugify lowercases s, folds accents to ASCII, drops punctuation and joins
// words with single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	out := slugStrip.ReplaceAllString(strings.ToLower(b.String()), "")
	out = slugCollapse.ReplaceAllString(out, "-")
	return strings.Trim(out, "-_")
}

// PrefixCIDR returns the /24 network of a dotted-quad IPv4 address.
func PrefixCIDR(ip string) (string, error) {
	octets := strings.Split(ip, ".")
	if len(octets) != 4 {
		return "", fmt.Errorf("%q is not a dotted-quad IPv4 address", ip)
	}
	for _, o := range octets {
		n, err := strconv.Atoi(o)
		if err != nil || n < 0 || n > 255 || o == "" {
			return "", fmt.Errorf("%q is not a dotted-quad IPv4 address", ip)
		}
	}
	return fmt.Sprintf("%s.0/24", strings.Join(octets[:3], ".")), nil
}

// HostAddress returns ip with a /24 mask, the form stored on management interfaces.
func HostAddress(ip string) string {
	return ip + "/24"
}
