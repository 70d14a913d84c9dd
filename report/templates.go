package report

import (
	"bytes"
	"html/template"
	"time"
)

// CertificateData is the bundle rendered into an issued document PDF.
type CertificateData struct {
	Reference    string
	Kind         string
	KindLabel    string
	ResidentName string
	Purpose      string
	IssueDate    time.Time
	ExpiryDate   *time.Time
	IssuedBy     string
	Signatory    string
	Barangay     string
}

// SlipData is the bundle rendered into an appointment slip PDF.
type SlipData struct {
	SlipReference string
	ApplicationID string
	ResidentName  string
	Kind          string
	AppointmentAt time.Time
	Venue         string
	Barangay      string
}

var certificateTmpl = template.Must(template.New("certificate").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.KindLabel}} {{.Reference}}</title>
<style>
body { font-family: Georgia, serif; margin: 48px; }
h1 { text-align: center; font-size: 20px; text-transform: uppercase; }
.ref { text-align: right; color: #555; }
.body { margin-top: 32px; line-height: 1.6; }
.sign { margin-top: 96px; text-align: right; }
.sign .name { font-weight: bold; text-decoration: underline; }
</style>
</head>
<body>
<p class="ref">{{.Reference}}</p>
<h1>{{.KindLabel}}</h1>
<div class="body">
<p>This is to certify that <strong>{{.ResidentName}}</strong> is a bona fide resident of {{.Barangay}}.</p>
<p>This {{.KindLabel}} is issued upon request for the purpose of <em>{{.Purpose}}</em> on {{.IssueDate.Format "January 2, 2006"}}.{{if .ExpiryDate}} Valid until {{.ExpiryDate.Format "January 2, 2006"}}.{{end}}</p>
</div>
<div class="sign">
<p class="name">{{.Signatory}}</p>
<p>Punong Barangay</p>
<p><small>Prepared by {{.IssuedBy}}</small></p>
</div>
</body>
</html>`))

var slipTmpl = template.Must(template.New("slip").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Appointment Slip {{.SlipReference}}</title>
<style>
body { font-family: Helvetica, sans-serif; margin: 48px; }
h1 { font-size: 18px; }
table { border-collapse: collapse; margin-top: 24px; }
td { padding: 6px 16px 6px 0; }
td.label { color: #555; }
</style>
</head>
<body>
<h1>Voter Verification Appointment Slip</h1>
<p>{{.Barangay}}</p>
<table>
<tr><td class="label">Slip reference</td><td><strong>{{.SlipReference}}</strong></td></tr>
<tr><td class="label">Application</td><td>{{.ApplicationID}} ({{.Kind}})</td></tr>
<tr><td class="label">Applicant</td><td>{{.ResidentName}}</td></tr>
<tr><td class="label">Schedule</td><td>{{.AppointmentAt.Format "January 2, 2006 3:04 PM"}}</td></tr>
<tr><td class="label">Venue</td><td>{{.Venue}}</td></tr>
</table>
<p><small>Bring one valid government-issued ID. Arrive 15 minutes before the scheduled time.</small></p>
</body>
</html>`))

// RenderCertificateHTML produces the certificate HTML handed to Gotenberg.
func RenderCertificateHTML(data CertificateData) (string, error) {
	var buf bytes.Buffer
	if err := certificateTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderSlipHTML produces the appointment slip HTML handed to Gotenberg.
func RenderSlipHTML(data SlipData) (string, error) {
	var buf bytes.Buffer
	if err := slipTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// KindLabel maps a document kind to the heading printed on the
// certificate.
func KindLabel(kind string) string {
	switch kind {
	case "BARANGAY_ID":
		return "Barangay Identification Card"
	case "BARANGAY_CLEARANCE":
		return "Barangay Clearance"
	case "CERT_RESIDENCY":
		return "Certificate of Residency"
	}
	return kind
}
