package listings

import "strings"

// KnownDistricts is the fixed lookup list for district extraction. Order
// matters: the first name found as a substring of the address wins, so
// specific neighbourhoods precede the broad corridors that contain them.
var KnownDistricts = []string{
	"Asok",
	"Nana",
	"Thonglor",
	"Ekkamai",
	"Phrom Phong",
	"On Nut",
	"Udom Suk",
	"Bang Na",
	"Ratchada",
	"Huai Khwang",
	"Ladprao",
	"Chatuchak",
	"Ari",
	"Phaya Thai",
	"Victory Monument",
	"Silom",
	"Sathorn",
	"Riverside",
	"Sukhumvit",
}

// ExtractDistrict returns the first known district whose name appears in the
// address, compared case-insensitively. A miss yields nil.
func ExtractDistrict(address string) *string {
	lowered := strings.ToLower(address)
	if strings.TrimSpace(lowered) == "" {
		return nil
	}
	for _, district := range KnownDistricts {
		if strings.Contains(lowered, strings.ToLower(district)) {
			name := district
			return &name
		}
	}
	return nil
}
