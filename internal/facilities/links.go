package facilities

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// DefaultCity is appended to addresses for map searches.
const DefaultCity = "Montes Claros, MG"

// Digits strips everything but ASCII digits from a phone number.
func Digits(number string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
}

// TelURL builds a tel: link from a formatted phone number.
func TelURL(number string) string {
	return "tel:" + Digits(number)
}

// DirectionsURL builds a Google Maps directions link to a point.
func DirectionsURL(c Coordinates) string {
	dest := strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
	return "https://www.google.com/maps/dir/?api=1&destination=" + dest
}

// SearchURL builds a Google Maps search link for an address in city.
func SearchURL(address, city string) string {
	q := strings.TrimFunc(address, unicode.IsSpace)
	if city != "" {
		q = fmt.Sprintf("%s, %s", q, city)
	}
	return "https://www.google.com/maps/search/" + url.PathEscape(q)
}

// LinksFor returns the call, directions and map links for f.
func LinksFor(f Facility) Links {
	return Links{
		Call:       TelURL(f.Phone),
		Directions: DirectionsURL(f.Location),
		Map:        SearchURL(f.Address, DefaultCity),
	}
}
