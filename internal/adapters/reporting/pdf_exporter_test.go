package reporting

import (
	"bytes"
	"testing"
	"time"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
)

func sampleReport() domain.WindowReport {
	return domain.WindowReport{
		GeneratedAt:   time.Now().Format(time.RFC3339),
		WindowSeconds: 86400,
		TotalPackets:  1250,
		Normal:        1100,
		Attacks:       150,
		AttackRatio:   12.0,
		QuarantinedDevices: []string{
			"iot-cam-03",
			"smart-lock-01",
		},
		ProtocolDistribution: map[domain.Protocol]int{
			domain.ProtocolTCP:  620,
			domain.ProtocolUDP:  340,
			domain.ProtocolMQTT: 180,
			domain.ProtocolHTTP: 110,
		},
		TopAttackDevices: []domain.AttackerCount{
			{DeviceID: "iot-cam-03", Attacks: 64},
			{DeviceID: "thermostat-02", Attacks: 41},
			{DeviceID: "smart-lock-01", Attacks: 28},
		},
	}
}

func TestPDFExporterExportWindowReport(t *testing.T) {
	exporter := NewPDFExporter()

	pdfData, err := exporter.ExportWindowReport(sampleReport(), domain.PeriodDaily)

	if err != nil {
		t.Fatalf("ExportWindowReport() error = %v", err)
	}

	// Verify PDF data is not empty
	if len(pdfData) == 0 {
		t.Fatal("PDF data is empty")
	}

	// Verify PDF header (PDF files start with %PDF-)
	if !bytes.HasPrefix(pdfData, []byte("%PDF-")) {
		t.Error("Generated data does not have PDF header")
	}

	// Verify reasonable file size (should be at least 1KB for a report)
	if len(pdfData) < 1000 {
		t.Errorf("PDF file size %d bytes seems too small", len(pdfData))
	}

	// Verify not too large (sanity check, should be < 1MB for this simple report)
	if len(pdfData) > 1000000 {
		t.Errorf("PDF file size %d bytes seems too large", len(pdfData))
	}

	t.Logf("Generated PDF size: %d bytes", len(pdfData))
}

func TestPDFExporterWithEmptyWindow(t *testing.T) {
	exporter := NewPDFExporter()

	// A window with no traffic at all still renders
	report := domain.WindowReport{
		GeneratedAt:          time.Now().Format(time.RFC3339),
		WindowSeconds:        604800,
		QuarantinedDevices:   []string{},
		ProtocolDistribution: map[domain.Protocol]int{},
		TopAttackDevices:     []domain.AttackerCount{},
	}

	pdfData, err := exporter.ExportWindowReport(report, domain.PeriodWeekly)

	if err != nil {
		t.Fatalf("ExportWindowReport() with empty window error = %v", err)
	}

	if len(pdfData) == 0 {
		t.Fatal("PDF data is empty for empty window")
	}

	if !bytes.HasPrefix(pdfData, []byte("%PDF-")) {
		t.Error("Empty-window report does not have PDF header")
	}

	t.Logf("Empty-window PDF size: %d bytes", len(pdfData))
}

func TestPDFExporterWithManyQuarantined(t *testing.T) {
	exporter := NewPDFExporter()

	report := sampleReport()
	report.QuarantinedDevices = []string{
		"iot-cam-01", "iot-cam-02", "iot-cam-03", "iot-cam-04",
		"smart-lock-01", "smart-lock-02", "thermostat-01", "thermostat-02",
		"doorbell-01", "doorbell-02", "hub-01", "hub-02",
	}

	pdfData, err := exporter.ExportWindowReport(report, domain.PeriodMonthly)

	if err != nil {
		t.Fatalf("ExportWindowReport() with long quarantine list error = %v", err)
	}

	if !bytes.HasPrefix(pdfData, []byte("%PDF-")) {
		t.Error("Report with long quarantine list does not have PDF header")
	}

	t.Logf("Long quarantine list PDF size: %d bytes", len(pdfData))
}

func TestGetRatioColor(t *testing.T) {
	exporter := &PDFExporter{}

	tests := []struct {
		ratio float64
		name  string
	}{
		{75.0, "Critical"},
		{50.0, "Critical"},
		{49.9, "High"},
		{25.0, "High"},
		{24.9, "Medium"},
		{10.0, "Medium"},
		{9.9, "Low"},
		{0.0, "Low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := exporter.getRatioColor(tt.ratio)

			// Verify RGB values are in valid range
			if r < 0 || r > 255 {
				t.Errorf("Red value %d out of range [0, 255]", r)
			}
			if g < 0 || g > 255 {
				t.Errorf("Green value %d out of range [0, 255]", g)
			}
			if b < 0 || b > 255 {
				t.Errorf("Blue value %d out of range [0, 255]", b)
			}

			// Verify colors are distinct for different risk levels
			// (just a basic sanity check)
			if r == 0 && g == 0 && b == 0 {
				t.Error("Color should not be pure black")
			}
		})
	}
}

// Benchmark PDF generation
func BenchmarkPDFExport(b *testing.B) {
	exporter := NewPDFExporter()
	report := sampleReport()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := exporter.ExportWindowReport(report, domain.PeriodDaily)
		if err != nil {
			b.Fatal(err)
		}
	}
}
