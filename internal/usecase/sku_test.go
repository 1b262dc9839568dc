package usecase

import "testing"

func TestExtractSKU(t *testing.T) {
	testCases := []struct {
		name        string
		productName string
		want        string
	}{
		{
			name:        "tabletop kit",
			productName: "Crestron Flex UC-M50-T",
			want:        "UC-M50-T",
		},
		{
			name:        "lowercase input is upper-cased",
			productName: "crestron flex uc-m50-t tabletop",
			want:        "UC-M50-T",
		},
		{
			name:        "video bar",
			productName: "UC-BX30-Z Flex Video Bar for Zoom",
			want:        "UC-BX30-Z",
		},
		{
			name:        "longest token wins",
			productName: "UC-B30 vs UC-MX50-U-Z upgrade kit",
			want:        "UC-MX50-U-Z",
		},
		{
			name:        "earlier token wins length ties",
			productName: "CCS-UC-1 and UC-M50-T bundle",
			want:        "CCS-UC-1",
		},
		{
			name:        "digits allowed in trailing groups",
			productName: "UC-2-REMOTE kit",
			want:        "UC-2-REMOTE",
		},
		{
			name:        "matching is purely lexical",
			productName: "Wall-Mount Smart Soundbar",
			want:        "WALL-MOUNT",
		},
		{
			name:        "first group longer than eight letters cannot match",
			productName: "Intelligent-Audio expansion",
			want:        "",
		},
		{
			name:        "no hyphenated token",
			productName: "Tabletop conferencing system",
			want:        "",
		},
		{
			name:        "empty name",
			productName: "",
			want:        "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractSKU(tc.productName)
			if got != tc.want {
				t.Errorf("ExtractSKU(%q) = %q, want %q", tc.productName, got, tc.want)
			}
		})
	}
}

func TestExtractSKU_Deterministic(t *testing.T) {
	// Repeated extraction over the same name must always agree; resolution
	// caching keys off the result.
	name := "Crestron Flex UC-MX50-U-Z with UC-CAM-WMK mount"
	first := ExtractSKU(name)
	for i := 0; i < 10; i++ {
		if got := ExtractSKU(name); got != first {
			t.Fatalf("ExtractSKU run %d = %q, want %q", i, got, first)
		}
	}
	if first != "UC-MX50-U-Z" {
		t.Errorf("ExtractSKU = %q, want UC-MX50-U-Z", first)
	}
}
