package report

import (
	"strings"
	"testing"
	"time"
)

func TestRenderCertificateHTML(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	html, err := RenderCertificateHTML(CertificateData{
		Reference:    "BC-2025-0000000001",
		Kind:         "BARANGAY_CLEARANCE",
		KindLabel:    KindLabel("BARANGAY_CLEARANCE"),
		ResidentName: "Juan Dela Cruz",
		Purpose:      "employment requirement",
		IssueDate:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate:   &expiry,
		IssuedBy:     "clerk.reyes",
		Signatory:    "Ramon Bautista",
		Barangay:     "Barangay San Isidro",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"BC-2025-0000000001",
		"Barangay Clearance",
		"Juan Dela Cruz",
		"employment requirement",
		"March 1, 2025",
		"Valid until March 1, 2026",
		"Ramon Bautista",
		"clerk.reyes",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("certificate html missing %q", want)
		}
	}
}

func TestRenderCertificateHTMLNoExpiry(t *testing.T) {
	html, err := RenderCertificateHTML(CertificateData{
		Reference:    "CR-2025-0000000002",
		KindLabel:    KindLabel("CERT_RESIDENCY"),
		ResidentName: "Maria Santos",
		Purpose:      "scholarship",
		IssueDate:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		IssuedBy:     "clerk.reyes",
		Signatory:    "Ramon Bautista",
		Barangay:     "Barangay San Isidro",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "Valid until") {
		t.Fatal("certificate without expiry must not print a validity line")
	}
}

func TestRenderSlipHTML(t *testing.T) {
	html, err := RenderSlipHTML(SlipData{
		SlipReference: "AS-2025-ABCD1234",
		ApplicationID: "VA-2025-0000000001",
		ResidentName:  "Juan Dela Cruz",
		Kind:          "NEW",
		AppointmentAt: time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC),
		Venue:         "Barangay Hall",
		Barangay:      "Barangay San Isidro",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"AS-2025-ABCD1234",
		"VA-2025-0000000001",
		"Juan Dela Cruz",
		"March 10, 2025 8:30 AM",
		"Barangay Hall",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("slip html missing %q", want)
		}
	}
}

func TestKindLabelFallsBackToRawKind(t *testing.T) {
	if got := KindLabel("UNKNOWN_KIND"); got != "UNKNOWN_KIND" {
		t.Fatalf("unexpected label: %s", got)
	}
}
