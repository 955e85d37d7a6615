package reporting

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
)

// PDFExporter renders traffic reports to PDF format
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportWindowReport generates a printable PDF from a windowed traffic report
func (e *PDFExporter) ExportWindowReport(report domain.WindowReport, period domain.ReportPeriod) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, report, period)
	e.addAttackRatio(pdf, report)
	e.addCounts(pdf, report)
	e.addProtocols(pdf, report)
	e.addTopAttackers(pdf, report)
	e.addQuarantine(pdf, report)
	e.addFooter(pdf, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// addHeader adds the report title block
func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report domain.WindowReport, period domain.ReportPeriod) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	title := fmt.Sprintf("IntelliGuard %s Traffic Report", titleCase(string(period)))
	pdf.CellFormat(0, 15, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", report.GeneratedAt), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Window: trailing %d seconds", report.WindowSeconds), "", 1, "L", false, 0, "")

	pdf.Ln(8)
}

// addAttackRatio adds the prominent attack ratio display
func (e *PDFExporter) addAttackRatio(pdf *gofpdf.Fpdf, report domain.WindowReport) {
	r, g, b := e.getRatioColor(report.AttackRatio)

	pdf.SetFillColor(r, g, b)
	pdf.Rect(20, pdf.GetY(), 170, 30, "F")

	y := pdf.GetY()

	pdf.SetFont("Arial", "B", 36)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(25, y+5)
	pdf.CellFormat(80, 20, fmt.Sprintf("%.2f%%", report.AttackRatio), "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 18)
	pdf.SetXY(110, y+8)
	pdf.CellFormat(80, 14, "Attack Traffic", "", 0, "L", false, 0, "")

	pdf.SetY(y + 35)
	pdf.Ln(5)
}

// getRatioColor returns RGB color based on the attack percentage
func (e *PDFExporter) getRatioColor(ratio float64) (r, g, b int) {
	switch {
	case ratio >= 50:
		return 220, 53, 69 // Red (Critical)
	case ratio >= 25:
		return 255, 149, 0 // Orange (High)
	case ratio >= 10:
		return 255, 204, 0 // Yellow (Medium)
	default:
		return 52, 199, 89 // Green (Low)
	}
}

// addCounts adds the packet count overview grid
func (e *PDFExporter) addCounts(pdf *gofpdf.Fpdf, report domain.WindowReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Traffic Overview", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	stats := []struct {
		label string
		value string
		color []int
	}{
		{"Total Packets", fmt.Sprintf("%d", report.TotalPackets), []int{0, 102, 204}},
		{"Normal", fmt.Sprintf("%d", report.Normal), []int{52, 199, 89}},
		{"Attacks", fmt.Sprintf("%d", report.Attacks), []int{220, 53, 69}},
		{"Quarantined Devices", fmt.Sprintf("%d", len(report.QuarantinedDevices)), []int{255, 149, 0}},
	}

	colWidth := 85.0
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}

		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(stat.color[0], stat.color[1], stat.color[2])
		pdf.CellFormat(colWidth-50, 7, stat.value, "", 0, "R", false, 0, "")

		if i%2 == 1 {
			pdf.Ln(7)
		}
	}

	pdf.Ln(10)
}

// addProtocols adds the protocol distribution table
func (e *PDFExporter) addProtocols(pdf *gofpdf.Fpdf, report domain.WindowReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Protocol Distribution", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(report.ProtocolDistribution) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No traffic in this window", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(60, 8, "Protocol", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Packets", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, proto := range domain.Protocols() {
		count, ok := report.ProtocolDistribution[proto]
		if !ok {
			continue
		}
		pdf.CellFormat(60, 7, strings.ToUpper(string(proto)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d", count), "1", 1, "C", false, 0, "")
	}

	pdf.Ln(8)
}

// addTopAttackers adds the top attack devices table
func (e *PDFExporter) addTopAttackers(pdf *gofpdf.Fpdf, report domain.WindowReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Top Attack Devices", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(report.TopAttackDevices) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No attacks observed in this window", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(15, 8, "Rank", "1", 0, "C", true, 0, "")
	pdf.CellFormat(85, 8, "Device", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Attacks", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for i, attacker := range report.TopAttackDevices {
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(85, 7, attacker.DeviceID, "1", 0, "L", false, 0, "")

		pdf.SetTextColor(220, 53, 69)
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", attacker.Attacks), "1", 1, "C", false, 0, "")
		pdf.SetTextColor(60, 60, 60)
	}

	pdf.Ln(8)
}

// addQuarantine lists quarantined devices
func (e *PDFExporter) addQuarantine(pdf *gofpdf.Fpdf, report domain.WindowReport) {
	if len(report.QuarantinedDevices) == 0 {
		return
	}

	if pdf.GetY() > 240 {
		pdf.AddPage()
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Quarantined Devices", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	devices := append([]string(nil), report.QuarantinedDevices...)
	sort.Strings(devices)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(60, 60, 60)
	for _, id := range devices {
		pdf.CellFormat(5, 5, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, "- "+id, "", 1, "L", false, 0, "")
	}

	pdf.Ln(5)
}

// addFooter adds the report footer
func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, report domain.WindowReport) {
	pdf.SetY(-20)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	footerText := fmt.Sprintf("IntelliGuard IoT Security Monitor | %s", report.GeneratedAt)
	pdf.CellFormat(0, 5, footerText, "", 1, "C", false, 0, "")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
