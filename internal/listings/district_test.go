package listings

import "testing"

func TestExtractDistrict(t *testing.T) {
	cases := []struct {
		name    string
		address string
		want    string
	}{
		{"simple", "120 Thonglor Soi 10", "Thonglor"},
		{"case insensitive", "5 SILOM road", "Silom"},
		{"specific beats broad", "99 Sukhumvit 23, Asok", "Asok"},
		{"broad corridor fallback", "250 Sukhumvit Road", "Sukhumvit"},
		{"multi word", "18 Phrom Phong alley", "Phrom Phong"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractDistrict(tc.address)
			if got == nil {
				t.Fatalf("expected %q, got nil", tc.want)
			}
			if *got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, *got)
			}
		})
	}
}

func TestExtractDistrictMiss(t *testing.T) {
	if got := ExtractDistrict("1 Unknown Street, Chiang Mai"); got != nil {
		t.Fatalf("expected nil, got %q", *got)
	}
	if got := ExtractDistrict("   "); got != nil {
		t.Fatalf("expected nil for blank address, got %q", *got)
	}
}
