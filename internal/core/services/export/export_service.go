package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
)

// ErrNoData signals that an export was requested with nothing to write.
// Callers surface it as a notification, not a failure.
var ErrNoData = errors.New("no records to export")

// Header of the live table export
var liveHeader = []string{
	"Timestamp", "Device ID", "Device Type", "Protocol",
	"Packet Rate", "Byte Rate", "Status", "Threat Score",
}

// RecordsCSV writes the recent-packets table as CSV, newest first. The
// Status column carries the label, suffixed with " (Q)" while the device is
// quarantined.
func RecordsCSV(w io.Writer, records []domain.TelemetryRecord) error {
	if len(records) == 0 {
		return ErrNoData
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(liveHeader); err != nil {
		return err
	}

	for _, r := range records {
		status := r.Label
		if r.Quarantined {
			status += " (Q)"
		}
		row := []string{
			r.Timestamp,
			r.DeviceID,
			r.DeviceType,
			string(r.Protocol),
			formatNumber(r.PacketRate),
			formatNumber(r.ByteRate),
			status,
			formatNumber(r.ThreatScore),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

// RecordsJSON writes the recent-packets table as an indented JSON array.
func RecordsJSON(w io.Writer, records []domain.TelemetryRecord) error {
	if len(records) == 0 {
		return ErrNoData
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// ReportCSV writes a window report as metric/value rows.
func ReportCSV(w io.Writer, report domain.WindowReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	rows := [][]string{
		{"metric", "value"},
		{"generated_at", report.GeneratedAt},
		{"window_seconds", strconv.Itoa(report.WindowSeconds)},
		{"total_packets", strconv.Itoa(report.TotalPackets)},
		{"normal", strconv.Itoa(report.Normal)},
		{"attacks", strconv.Itoa(report.Attacks)},
		{"attack_ratio_percent", strconv.FormatFloat(report.AttackRatio, 'f', 2, 64)},
		{"quarantined_devices", strings.Join(report.QuarantinedDevices, ";")},
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	// Enum display order keeps the rows stable across runs
	for _, proto := range domain.Protocols() {
		count, ok := report.ProtocolDistribution[proto]
		if !ok {
			continue
		}
		if err := writer.Write([]string{"protocol_" + string(proto), strconv.Itoa(count)}); err != nil {
			return err
		}
	}

	for i, dev := range report.TopAttackDevices {
		row := []string{
			fmt.Sprintf("top_attack_device_%d", i+1),
			fmt.Sprintf("%s (%d)", dev.DeviceID, dev.Attacks),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

// LiveFilename names a live export download after the moment it was taken:
// an ISO 8601 UTC timestamp with colons and the date separator flattened to
// hyphens.
func LiveFilename(now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.ReplaceAll(stamp, ":", "-")
	stamp = strings.ReplaceAll(stamp, "T", "-")
	return "intelliguard-live-" + stamp + ".csv"
}

// ReportFilename names a period report download.
func ReportFilename(period domain.ReportPeriod, now time.Time) string {
	return fmt.Sprintf("intelliguard-%s-report-%s.csv", period, now.Format("2006-01-02"))
}

// formatNumber renders a metric in its shortest decimal form, so integral
// rates stay integral in the CSV.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
